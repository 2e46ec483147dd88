package items

import (
	"context"
	"fmt"
	"net/http"

	formcodec "github.com/go-playground/form/v4"
	"github.com/gorilla/mux"

	"github.com/Ethan-Swanepoel/RacerBooks/lib/mycontext"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/myerrors"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/myhttp"
	"github.com/Ethan-Swanepoel/RacerBooks/services/cart/cartevents"
	"github.com/Ethan-Swanepoel/RacerBooks/services/items/itemevents"
)

type itemForm struct {
	Code    string `form:"code"`
	Name    string `form:"name"`
	Price   string `form:"price"`
	Stock   int    `form:"stock"`
	Details string `form:"details"`
}

type itemView struct {
	Code       string
	Name       string
	Price      string
	Stock      int
	Details    string
	TimesAdded int
}

func (s *service) RegisterEndpoints(c context.Context, router *mux.Router) error {
	err := s.publisher.CreateTopic(c, itemevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", itemevents.TopicName, err)
	}

	// /items/search must be registered before the {code} catch-all
	router.HandleFunc("/items", s.itemListPage()).Methods("GET")
	router.HandleFunc("/items/search", s.itemSearchPage()).Methods("GET")
	router.HandleFunc("/items/{code}", s.itemDetailsPage()).Methods("GET")
	router.HandleFunc("/items", s.itemCreatePage()).Methods("POST")
	router.HandleFunc("/items/event", s.eventPage()).Methods("POST")

	return s.Subscribe(c)
}

func (s *service) itemListPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		items, err := s.listItems(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, itemViews(items))
	}
}

func (s *service) itemSearchPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		searchBy := r.URL.Query().Get("searchBy")
		search := r.URL.Query().Get("search")

		items, err := s.searchItems(c, searchBy, search)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, itemViews(items))
	}
}

func (s *service) itemDetailsPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		code := mux.Vars(r)["code"]

		item, err := s.getItem(c, code)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, itemView{
			Code:       item.Code,
			Name:       item.Name,
			Price:      item.PriceString(),
			Stock:      item.Stock,
			Details:    item.Details,
			TimesAdded: item.TimesAdded,
		})
	}
}

func (s *service) itemCreatePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		_, err := s.gate.AuthorizeAdmin(c, r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		form, err := parseItemForm(r)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		price, err := ParsePrice(form.Price)
		if err != nil {
			errorWriter.WriteError(c, w, 3, myerrors.NewInvalidInputError(err))
			return
		}

		item, err := s.createItem(c, Item{
			Code:    form.Code,
			Name:    form.Name,
			Price:   price,
			Stock:   form.Stock,
			Details: form.Details,
		})
		if err != nil {
			errorWriter.WriteError(c, w, 4, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, itemView{
			Code:       item.Code,
			Name:       item.Name,
			Price:      item.PriceString(),
			Stock:      item.Stock,
			Details:    item.Details,
			TimesAdded: item.TimesAdded,
		})
	}
}

func (s *service) eventPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := cartevents.DispatchEvent(c, r.Body, s)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{})
	}
}

func itemViews(items []Item) []itemView {
	views := make([]itemView, 0, len(items))
	for _, item := range items {
		views = append(views, itemView{
			Code:       item.Code,
			Name:       item.Name,
			Price:      item.PriceString(),
			Stock:      item.Stock,
			Details:    item.Details,
			TimesAdded: item.TimesAdded,
		})
	}
	return views
}

func parseItemForm(r *http.Request) (itemForm, error) {
	err := r.ParseForm()
	if err != nil {
		return itemForm{}, myerrors.NewInvalidInputError(fmt.Errorf("error parsing form: %s", err))
	}

	form := itemForm{}
	err = formcodec.NewDecoder().Decode(&form, r.Form)
	if err != nil {
		return itemForm{}, myerrors.NewInvalidInputError(fmt.Errorf("error decoding form: %s", err))
	}

	return form, nil
}
