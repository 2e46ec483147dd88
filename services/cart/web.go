package cart

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Ethan-Swanepoel/RacerBooks/lib/mycontext"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/myhttp"
	"github.com/Ethan-Swanepoel/RacerBooks/services/cart/cartevents"
)

type cartLineView struct {
	ItemCode string
	Name     string
	Price    string
	Quantity int
	Subtotal string
}

type cartView struct {
	Lines []cartLineView
	Total string
}

func (s *service) RegisterEndpoints(c context.Context, router *mux.Router) error {
	err := s.publisher.CreateTopic(c, cartevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", cartevents.TopicName, err)
	}

	router.HandleFunc("/cart", s.cartPage()).Methods("GET")
	router.HandleFunc("/cart/{code}", s.addToCartPage()).Methods("POST")
	router.HandleFunc("/cart/{code}", s.removeLinePage()).Methods("DELETE")

	return nil
}

func (s *service) cartPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		user, err := s.auth.Authenticate(c, r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		cart, err := s.viewCart(c, user.Email)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		view := cartView{
			Lines: make([]cartLineView, 0, len(cart.Lines)),
			Total: centsString(cart.Total),
		}
		for _, line := range cart.Lines {
			view.Lines = append(view.Lines, cartLineView{
				ItemCode: line.Line.ItemCode,
				Name:     line.Item.Name,
				Price:    line.Item.PriceString(),
				Quantity: line.Line.Quantity,
				Subtotal: centsString(int64(line.Line.Quantity) * line.Item.Price),
			})
		}

		errorWriter.Write(c, w, http.StatusOK, view)
	}
}

func (s *service) addToCartPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		user, err := s.auth.Authenticate(c, r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		code := mux.Vars(r)["code"]

		line, err := s.addToCart(c, user.Email, code)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, cartLineView{
			ItemCode: line.ItemCode,
			Quantity: line.Quantity,
		})
	}
}

func (s *service) removeLinePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		user, err := s.auth.Authenticate(c, r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		code := mux.Vars(r)["code"]

		err = s.removeLine(c, user.Email, code)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{})
	}
}

func centsString(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
