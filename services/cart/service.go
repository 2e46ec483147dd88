package cart

import (
	"context"
	"net/http"

	"github.com/Ethan-Swanepoel/RacerBooks/lib/mylog"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mypublisher"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mystore"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mytime"
	"github.com/Ethan-Swanepoel/RacerBooks/services/items"
	"github.com/Ethan-Swanepoel/RacerBooks/services/users"
)

// Authenticator resolves the session cookie of a request to the logged-in
// user. Every cart operation requires one.
type Authenticator interface {
	Authenticate(c context.Context, r *http.Request) (users.User, error)
}

type service struct {
	cartStore mystore.Store[Line]
	itemStore mystore.Store[items.Item]
	publisher mypublisher.Publisher
	auth      Authenticator
	nower     mytime.Nower
	logger    mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing.
// The itemStore is the same store the catalog writes to: the stock decrement
// and the cart line land in one transaction.
func NewService(cartStore mystore.Store[Line], itemStore mystore.Store[items.Item], publisher mypublisher.Publisher, auth Authenticator, nower mytime.Nower, logger mylog.Logger) *service {
	return &service{
		cartStore: cartStore,
		itemStore: itemStore,
		publisher: publisher,
		auth:      auth,
		nower:     nower,
		logger:    logger,
	}
}
