package auth

import (
	"context"
	"fmt"
	"net/http"

	formcodec "github.com/go-playground/form/v4"
	"github.com/gorilla/mux"

	"github.com/Ethan-Swanepoel/RacerBooks/lib/mycontext"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/myerrors"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/myhttp"
	"github.com/Ethan-Swanepoel/RacerBooks/services/auth/authevents"
	"github.com/Ethan-Swanepoel/RacerBooks/services/users"
)

type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

type loginView struct {
	Email string
	Role  string
}

func (s *service) RegisterEndpoints(c context.Context, router *mux.Router) error {
	err := s.publisher.CreateTopic(c, authevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", authevents.TopicName, err)
	}

	router.HandleFunc("/login", s.loginPage(users.Role(""))).Methods("POST")
	router.HandleFunc("/admin/login", s.loginPage(users.RoleAdmin)).Methods("POST")
	router.HandleFunc("/logout", s.logoutPage()).Methods("GET", "POST")

	return nil
}

func (s *service) loginPage(requiredRole users.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		form, err := parseLoginForm(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		user, token, err := s.login(c, form.Email, form.Password, requiredRole)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
		})

		errorWriter.Write(c, w, http.StatusOK, loginView{
			Email: user.Email,
			Role:  string(user.Role),
		})
	}
}

func (s *service) logoutPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		token := ""
		cookie, err := r.Cookie(sessionCookieName)
		if err == nil {
			token = cookie.Value
		}

		err = s.logout(c, token)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			MaxAge:   -1,
		})

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{})
	}
}

func parseLoginForm(r *http.Request) (loginForm, error) {
	err := r.ParseForm()
	if err != nil {
		return loginForm{}, myerrors.NewInvalidInputError(fmt.Errorf("error parsing form: %s", err))
	}

	form := loginForm{}
	err = formcodec.NewDecoder().Decode(&form, r.Form)
	if err != nil {
		return loginForm{}, myerrors.NewInvalidInputError(fmt.Errorf("error decoding form: %s", err))
	}

	return form, nil
}
