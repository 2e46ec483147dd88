package auth

import (
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mylog"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mypublisher"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mystore"
	"github.com/Ethan-Swanepoel/RacerBooks/services/auth/attemptlog"
	"github.com/Ethan-Swanepoel/RacerBooks/services/identity"
	"github.com/Ethan-Swanepoel/RacerBooks/services/session"
	"github.com/Ethan-Swanepoel/RacerBooks/services/users"
)

// sessionCookieName is the only place the cookie is known by name: other
// services authorize through the Gatekeeper interfaces and never touch it.
const sessionCookieName = "racerbooks_session"

type service struct {
	sessions   session.Store
	userStore  mystore.Store[users.User]
	identity   identity.Client
	attemptLog attemptlog.Logger
	publisher  mypublisher.Publisher
	logger     mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing.
// The userStore is the same store the user service writes to.
func NewService(sessions session.Store, userStore mystore.Store[users.User], identityClient identity.Client, attemptLog attemptlog.Logger, publisher mypublisher.Publisher, logger mylog.Logger) *service {
	return &service{
		sessions:   sessions,
		userStore:  userStore,
		identity:   identityClient,
		attemptLog: attemptLog,
		publisher:  publisher,
		logger:     logger,
	}
}
