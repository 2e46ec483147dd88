package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Ethan-Swanepoel/RacerBooks/lib/myerrors"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mylog"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mystore"
	"github.com/Ethan-Swanepoel/RacerBooks/services/auth/authevents"
	"github.com/Ethan-Swanepoel/RacerBooks/services/users"
)

// login verifies the credentials at the identity provider and starts a new
// session. When requiredRole is set, an authenticated user without that role
// is still rejected and the just-created session is cleared again.
func (s *service) login(c context.Context, email string, password string, requiredRole users.Role) (users.User, string, error) {
	externalUID, err := s.identity.SignIn(c, email, password)
	if err != nil {
		s.recordFailure(c, email, err.Error())
		return users.User{}, "", err
	}

	user, found, err := s.getByExternalUID(c, externalUID)
	if err != nil {
		return users.User{}, "", myerrors.NewInternalError(err)
	}
	if !found {
		s.recordFailure(c, email, "no local account")
		return users.User{}, "", myerrors.NewAuthenticationError(fmt.Errorf("no account for %s", email))
	}

	token, err := s.sessions.Create(c, externalUID)
	if err != nil {
		return users.User{}, "", myerrors.NewInternalError(err)
	}

	if requiredRole != "" && !users.RequireRole(user, requiredRole) {
		s.clearStaleSession(c, token)
		s.recordFailure(c, email, fmt.Sprintf("role %s required", requiredRole))
		return users.User{}, "", myerrors.NewAuthenticationError(fmt.Errorf("%s is not a %s", email, requiredRole))
	}

	err = s.publisher.Publish(c, authevents.TopicName, authevents.UserLoggedIn{
		Email: user.Email,
	})
	if err != nil {
		s.logger.Log(c, email, mylog.SeverityWarn, "Error publishing login of %s: %s", email, err)
	}

	s.logger.Log(c, email, mylog.SeverityInfo, "User %s logged in", email)

	return user, token, nil
}

// recordFailure is fire-and-forget: a login must never fail because the
// attempt could not be written to the log or the event bus.
func (s *service) recordFailure(c context.Context, email string, reason string) {
	err := s.attemptLog.LogUnsuccessfulAttempt(c, email, reason)
	if err != nil {
		s.logger.Log(c, email, mylog.SeverityWarn, "Error recording failed login of %s: %s", email, err)
	}

	err = s.publisher.Publish(c, authevents.TopicName, authevents.LoginFailed{
		Email:  email,
		Reason: reason,
	})
	if err != nil {
		s.logger.Log(c, email, mylog.SeverityWarn, "Error publishing failed login of %s: %s", email, err)
	}
}

// logout forgets the session. An unknown or already-expired token is fine.
func (s *service) logout(c context.Context, token string) error {
	if token == "" {
		return nil
	}

	externalUID, found, err := s.sessions.Resolve(c, token)
	if err != nil {
		return myerrors.NewInternalError(err)
	}

	err = s.sessions.Clear(c, token)
	if err != nil {
		return myerrors.NewInternalError(err)
	}

	if found {
		user, userFound, err := s.getByExternalUID(c, externalUID)
		if err == nil && userFound {
			err = s.publisher.Publish(c, authevents.TopicName, authevents.UserLoggedOut{
				Email: user.Email,
			})
			if err != nil {
				s.logger.Log(c, user.Email, mylog.SeverityWarn, "Error publishing logout of %s: %s", user.Email, err)
			}
		}
	}

	return nil
}

// Authenticate resolves the session cookie of an incoming request to the
// logged-in user. Resolving slides the idle window. A session whose user row
// no longer exists is stale: it is cleared before the error is reported, so
// the same token is plainly unauthenticated on the next request.
func (s *service) Authenticate(c context.Context, r *http.Request) (users.User, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return users.User{}, myerrors.NewAuthenticationError(fmt.Errorf("not logged in"))
	}

	externalUID, found, err := s.sessions.Resolve(c, cookie.Value)
	if err != nil {
		return users.User{}, myerrors.NewInternalError(err)
	}
	if !found {
		return users.User{}, myerrors.NewAuthenticationError(fmt.Errorf("not logged in"))
	}

	user, found, err := s.getByExternalUID(c, externalUID)
	if err != nil {
		return users.User{}, myerrors.NewInternalError(err)
	}
	if !found {
		s.clearStaleSession(c, cookie.Value)
		return users.User{}, myerrors.NewAuthenticationError(fmt.Errorf("not logged in"))
	}

	return user, nil
}

func (s *service) getByExternalUID(c context.Context, externalUID string) (users.User, bool, error) {
	matches, err := s.userStore.Query(c, []mystore.Filter{
		{Field: "ExternalUID", Compare: "=", Value: externalUID},
	}, "")
	if err != nil {
		return users.User{}, false, err
	}
	if len(matches) == 0 {
		return users.User{}, false, nil
	}

	return matches[0], true, nil
}

// AuthorizeAdmin is Authenticate plus the admin-role check. A role mismatch
// clears the session: a token that reached for an admin page without the role
// must not keep authenticating afterwards.
func (s *service) AuthorizeAdmin(c context.Context, r *http.Request) (users.User, error) {
	user, err := s.Authenticate(c, r)
	if err != nil {
		return users.User{}, err
	}

	if !users.RequireRole(user, users.RoleAdmin) {
		if cookie, cookieErr := r.Cookie(sessionCookieName); cookieErr == nil {
			s.clearStaleSession(c, cookie.Value)
		}
		return users.User{}, myerrors.NewAuthenticationError(fmt.Errorf("%s is not an %s", user.Email, users.RoleAdmin))
	}

	return user, nil
}

func (s *service) clearStaleSession(c context.Context, token string) {
	err := s.sessions.Clear(c, token)
	if err != nil {
		s.logger.Log(c, token, mylog.SeverityWarn, "Error clearing stale session: %s", err)
	}
}
