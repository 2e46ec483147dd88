package identity

import "context"

// Client talks to the external identity provider that verifies credentials
// and issues stable account identifiers. Sign-in failures are never retried:
// the provider's own message is carried inside the returned error so the
// caller can show it to the user.
//
//go:generate mockgen -source=api.go -package identity -destination client_mock.go Client
type Client interface {
	SignIn(c context.Context, email string, password string) (string, error)
	SignUp(c context.Context, email string, password string) (string, error)
}
