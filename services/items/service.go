package items

import (
	"context"
	"net/http"

	"github.com/Ethan-Swanepoel/RacerBooks/lib/mylog"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mypublisher"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mypubsub"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mystore"
	"github.com/Ethan-Swanepoel/RacerBooks/services/users"
)

// Gatekeeper guards catalog changes: only admins create items.
type Gatekeeper interface {
	AuthorizeAdmin(c context.Context, r *http.Request) (users.User, error)
}

type service struct {
	itemStore  mystore.Store[Item]
	publisher  mypublisher.Publisher
	subscriber mypubsub.PubSub
	gate       Gatekeeper
	logger     mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(store mystore.Store[Item], publisher mypublisher.Publisher, subscriber mypubsub.PubSub, gate Gatekeeper, logger mylog.Logger) *service {
	return &service{
		itemStore:  store,
		publisher:  publisher,
		subscriber: subscriber,
		gate:       gate,
		logger:     logger,
	}
}
