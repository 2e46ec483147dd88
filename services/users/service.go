package users

import (
	"context"
	"net/http"

	"github.com/Ethan-Swanepoel/RacerBooks/lib/mylog"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mypublisher"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mystore"
	"github.com/Ethan-Swanepoel/RacerBooks/services/identity"
)

// Gatekeeper guards the admin-only registration page.
type Gatekeeper interface {
	AuthorizeAdmin(c context.Context, r *http.Request) (User, error)
}

type service struct {
	userStore mystore.Store[User]
	identity  identity.Client
	publisher mypublisher.Publisher
	gate      Gatekeeper
	logger    mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(store mystore.Store[User], identityClient identity.Client, publisher mypublisher.Publisher, gate Gatekeeper, logger mylog.Logger) *service {
	return &service{
		userStore: store,
		identity:  identityClient,
		publisher: publisher,
		gate:      gate,
		logger:    logger,
	}
}
