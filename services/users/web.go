package users

import (
	"context"
	"fmt"
	"net/http"

	formcodec "github.com/go-playground/form/v4"
	"github.com/gorilla/mux"

	"github.com/Ethan-Swanepoel/RacerBooks/lib/mycontext"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/myerrors"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/myhttp"
	"github.com/Ethan-Swanepoel/RacerBooks/services/users/userevents"
)

type registrationForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

type userView struct {
	Email string
	Role  string
}

func (s *service) RegisterEndpoints(c context.Context, router *mux.Router) error {
	err := s.publisher.CreateTopic(c, userevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", userevents.TopicName, err)
	}

	router.HandleFunc("/register", s.registerPage(RoleCustomer)).Methods("POST")
	router.HandleFunc("/admin/register", s.adminRegisterPage()).Methods("POST")
	router.HandleFunc("/users", s.userListPage()).Methods("GET")
	router.HandleFunc("/users/{email}", s.userDetailsPage()).Methods("GET")

	return nil
}

func (s *service) registerPage(role Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		form, err := parseRegistrationForm(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		user, err := s.register(c, form.Email, form.Password, role)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, userView{
			Email: user.Email,
			Role:  string(user.Role),
		})
	}
}

func (s *service) adminRegisterPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		_, err := s.gate.AuthorizeAdmin(c, r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		s.registerPage(RoleAdmin)(w, r)
	}
}

func (s *service) userListPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		users, err := s.listUsers(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		views := make([]userView, 0, len(users))
		for _, u := range users {
			views = append(views, userView{Email: u.Email, Role: string(u.Role)})
		}

		errorWriter.Write(c, w, http.StatusOK, views)
	}
}

func (s *service) userDetailsPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		email := mux.Vars(r)["email"]

		user, err := s.getUser(c, email)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, userView{
			Email: user.Email,
			Role:  string(user.Role),
		})
	}
}

func parseRegistrationForm(r *http.Request) (registrationForm, error) {
	err := r.ParseForm()
	if err != nil {
		return registrationForm{}, myerrors.NewInvalidInputError(fmt.Errorf("error parsing form: %s", err))
	}

	form := registrationForm{}
	err = formcodec.NewDecoder().Decode(&form, r.Form)
	if err != nil {
		return registrationForm{}, myerrors.NewInvalidInputError(fmt.Errorf("error decoding form: %s", err))
	}

	return form, nil
}
