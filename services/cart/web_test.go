package cart

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/Ethan-Swanepoel/RacerBooks/lib/myerrors"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mylog"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mypublisher"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mystore"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mytime"
	"github.com/Ethan-Swanepoel/RacerBooks/services/cart/cartevents"
	"github.com/Ethan-Swanepoel/RacerBooks/services/items"
	"github.com/Ethan-Swanepoel/RacerBooks/services/users"
)

const (
	alice = "alice@x.com"
	bob   = "bob@x.com"
)

func TestAddToCart(t *testing.T) {

	t.Run("Adding decrements stock and creates a line", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, f := setup(t, ctrl)
		f.itemStore.Put(ctx, "B001", items.Item{Code: "B001", Name: "The Art of Racing", Price: 1299, Stock: 3})

		// given
		f.publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, cartevents.ItemAdded{
			Email:    alice,
			ItemCode: "B001",
			Quantity: 1,
		}).Return(nil)

		// when
		response := do(f.router, http.MethodPost, "/cart/B001", alice)

		// then
		assert.Equal(t, 200, response.Code)
		item, _, _ := f.itemStore.Get(ctx, "B001")
		assert.Equal(t, 2, item.Stock)
		line, exists, _ := f.cartStore.Get(ctx, "alice@x.com|B001")
		assert.True(t, exists)
		assert.Equal(t, 1, line.Quantity)
	})

	t.Run("Adding the same item again merges into one line", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, f := setup(t, ctrl)
		f.itemStore.Put(ctx, "B001", items.Item{Code: "B001", Name: "The Art of Racing", Price: 1299, Stock: 3})
		f.publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, gomock.Any()).Return(nil).Times(2)

		// when
		do(f.router, http.MethodPost, "/cart/B001", alice)
		response := do(f.router, http.MethodPost, "/cart/B001", alice)

		// then: one line with quantity 2, stock down by 2
		assert.Equal(t, 200, response.Code)
		lines, _ := f.cartStore.List(ctx)
		assert.Len(t, lines, 1)
		assert.Equal(t, 2, lines[0].Quantity)
		item, _, _ := f.itemStore.Get(ctx, "B001")
		assert.Equal(t, 1, item.Stock)
	})

	t.Run("Unknown item", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, f := setup(t, ctrl)

		// when
		response := do(f.router, http.MethodPost, "/cart/B999", alice)

		// then
		assert.Equal(t, 404, response.Code)
	})

	t.Run("Out of stock mutates nothing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, f := setup(t, ctrl)
		f.itemStore.Put(ctx, "B002", items.Item{Code: "B002", Name: "Pitstop Strategies", Price: 550, Stock: 0})

		// when
		response := do(f.router, http.MethodPost, "/cart/B002", alice)

		// then: conflict, no line, stock still zero
		assert.Equal(t, 409, response.Code)
		lines, _ := f.cartStore.List(ctx)
		assert.Empty(t, lines)
		item, _, _ := f.itemStore.Get(ctx, "B002")
		assert.Equal(t, 0, item.Stock)
	})

	t.Run("Two users racing for the last unit", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, f := setup(t, ctrl)
		f.itemStore.Put(ctx, "B001", items.Item{Code: "B001", Name: "The Art of Racing", Price: 1299, Stock: 1})
		f.publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, gomock.Any()).Return(nil)

		// when
		first := do(f.router, http.MethodPost, "/cart/B001", alice)
		second := do(f.router, http.MethodPost, "/cart/B001", bob)

		// then: only the first add wins
		assert.Equal(t, 200, first.Code)
		assert.Equal(t, 409, second.Code)
		_, aliceHas, _ := f.cartStore.Get(ctx, "alice@x.com|B001")
		assert.True(t, aliceHas)
		_, bobHas, _ := f.cartStore.Get(ctx, "bob@x.com|B001")
		assert.False(t, bobHas)
	})

	t.Run("Cart requires a session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, f := setup(t, ctrl)

		// when
		response := do(f.router, http.MethodPost, "/cart/B001", "nobody")

		// then
		assert.Equal(t, 403, response.Code)
	})
}

func TestViewCart(t *testing.T) {

	t.Run("Totals count only the own cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, f := setup(t, ctrl)
		f.itemStore.Put(ctx, "B001", items.Item{Code: "B001", Name: "The Art of Racing", Price: 1299, Stock: 10})
		f.itemStore.Put(ctx, "B002", items.Item{Code: "B002", Name: "Pitstop Strategies", Price: 550, Stock: 10})
		f.publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, gomock.Any()).Return(nil).Times(4)

		// given: alice has 2x B001 + 1x B002, bob has 1x B001
		do(f.router, http.MethodPost, "/cart/B001", alice)
		do(f.router, http.MethodPost, "/cart/B001", alice)
		do(f.router, http.MethodPost, "/cart/B002", alice)
		do(f.router, http.MethodPost, "/cart/B001", bob)

		// when
		response := do(f.router, http.MethodGet, "/cart", alice)

		// then: 2*12.99 + 1*5.50 = 31.48, bob's line not included
		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), "31.48")

		bobResponse := do(f.router, http.MethodGet, "/cart", bob)
		assert.Contains(t, bobResponse.Body.String(), "12.99")
		assert.NotContains(t, bobResponse.Body.String(), "B002")
	})

	t.Run("Lines keep first-add order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, f := setup(t, ctrl)
		f.itemStore.Put(ctx, "B001", items.Item{Code: "B001", Name: "The Art of Racing", Price: 1299, Stock: 10})
		f.itemStore.Put(ctx, "B002", items.Item{Code: "B002", Name: "Pitstop Strategies", Price: 550, Stock: 10})
		f.publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, gomock.Any()).Return(nil).Times(3)

		// given: B002 first, then B001, then B002 again
		do(f.router, http.MethodPost, "/cart/B002", alice)
		do(f.router, http.MethodPost, "/cart/B001", alice)
		do(f.router, http.MethodPost, "/cart/B002", alice)

		// when
		response := do(f.router, http.MethodGet, "/cart", alice)

		// then: merging does not move a line to the back
		assert.Equal(t, 200, response.Code)
		assert.Less(t,
			strings.Index(response.Body.String(), "B002"),
			strings.Index(response.Body.String(), "B001"))
	})

	t.Run("Lines added at the same instant keep a fixed order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, f := setup(t, ctrl)
		f.itemStore.Put(ctx, "B001", items.Item{Code: "B001", Name: "The Art of Racing", Price: 1299, Stock: 10})
		f.itemStore.Put(ctx, "B002", items.Item{Code: "B002", Name: "Pitstop Strategies", Price: 550, Stock: 10})

		// given: two lines sharing one timestamp
		f.cartStore.Put(ctx, "alice@x.com|B002", Line{UID: "alice@x.com|B002", Email: alice, ItemCode: "B002", Quantity: 1, AddedAt: mytime.ExampleTime})
		f.cartStore.Put(ctx, "alice@x.com|B001", Line{UID: "alice@x.com|B001", Email: alice, ItemCode: "B001", Quantity: 1, AddedAt: mytime.ExampleTime})

		// when: the tie is broken on item code, every time
		for i := 0; i < 3; i++ {
			response := do(f.router, http.MethodGet, "/cart", alice)
			assert.Equal(t, 200, response.Code)
			assert.Less(t,
				strings.Index(response.Body.String(), "B001"),
				strings.Index(response.Body.String(), "B002"))
		}
	})

	t.Run("Empty cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, f := setup(t, ctrl)

		// when
		response := do(f.router, http.MethodGet, "/cart", alice)

		// then
		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), "0.00")
	})
}

func TestRemoveLine(t *testing.T) {

	t.Run("Removal does not restore stock", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, f := setup(t, ctrl)
		f.itemStore.Put(ctx, "B001", items.Item{Code: "B001", Name: "The Art of Racing", Price: 1299, Stock: 3})
		f.publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, gomock.Any()).Return(nil).Times(2)
		do(f.router, http.MethodPost, "/cart/B001", alice)
		do(f.router, http.MethodPost, "/cart/B001", alice)

		// given
		f.publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, cartevents.LineRemoved{
			Email:    alice,
			ItemCode: "B001",
		}).Return(nil)

		// when
		response := do(f.router, http.MethodDelete, "/cart/B001", alice)

		// then: line gone, both reserved units stay off the shelf
		assert.Equal(t, 200, response.Code)
		_, exists, _ := f.cartStore.Get(ctx, "alice@x.com|B001")
		assert.False(t, exists)
		item, _, _ := f.itemStore.Get(ctx, "B001")
		assert.Equal(t, 1, item.Stock)
	})

	t.Run("Removing an absent line", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, f := setup(t, ctrl)

		// when
		response := do(f.router, http.MethodDelete, "/cart/B001", alice)

		// then
		assert.Equal(t, 404, response.Code)
	})
}

type fixture struct {
	router    *mux.Router
	cartStore mystore.Store[Line]
	itemStore mystore.Store[items.Item]
	publisher *mypublisher.MockPublisher
}

func setup(t *testing.T, ctrl *gomock.Controller) (context.Context, fixture) {
	c := context.TODO()

	cartStore, _, err := mystore.New[Line](c)
	assert.NoError(t, err)
	itemStore, _, err := mystore.New[items.Item](c)
	assert.NoError(t, err)
	publisher := mypublisher.NewMockPublisher(ctrl)

	// deterministic strictly increasing clock
	nower := mytime.NewMockNower(ctrl)
	tick := 0
	nower.EXPECT().Now().DoAndReturn(func() time.Time {
		tick++
		return mytime.ExampleTime.Add(time.Duration(tick) * time.Second)
	}).AnyTimes()

	sut := NewService(cartStore, itemStore, publisher, knownUsers{}, nower, mylog.New("cart"))
	router := mux.NewRouter()

	// Called by the following call to RegisterEndpoints()
	publisher.EXPECT().CreateTopic(c, cartevents.TopicName).Return(nil)

	err = sut.RegisterEndpoints(c, router)
	assert.NoError(t, err)

	return c, fixture{
		router:    router,
		cartStore: cartStore,
		itemStore: itemStore,
		publisher: publisher,
	}
}

// knownUsers authenticates requests by the bearer token, which in these tests
// simply is the email address.
type knownUsers struct{}

func (a knownUsers) Authenticate(c context.Context, r *http.Request) (users.User, error) {
	email := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if email != alice && email != bob {
		return users.User{}, myerrors.NewAuthenticationError(fmt.Errorf("not logged in"))
	}
	return users.User{Email: email, Role: users.RoleCustomer}, nil
}

func do(router *mux.Router, method string, path string, email string) *httptest.ResponseRecorder {
	request, _ := http.NewRequest(method, path, nil)
	request.Header.Set("Authorization", "Bearer "+email)
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}
