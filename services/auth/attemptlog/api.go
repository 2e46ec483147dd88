package attemptlog

import "context"

// Logger records unsuccessful login attempts. It is fire-and-forget: callers
// must never fail the login because the attempt could not be recorded.
//
//go:generate mockgen -source=api.go -package attemptlog -destination logger_mock.go Logger
type Logger interface {
	LogUnsuccessfulAttempt(c context.Context, email string, reason string) error
}
