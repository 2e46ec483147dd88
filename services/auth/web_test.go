package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/Ethan-Swanepoel/RacerBooks/lib/myerrors"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mylog"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mypublisher"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mystore"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mytime"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/myuuid"
	"github.com/Ethan-Swanepoel/RacerBooks/services/auth/attemptlog"
	"github.com/Ethan-Swanepoel/RacerBooks/services/auth/authevents"
	"github.com/Ethan-Swanepoel/RacerBooks/services/identity"
	"github.com/Ethan-Swanepoel/RacerBooks/services/session"
	"github.com/Ethan-Swanepoel/RacerBooks/services/users"
)

func TestLogin(t *testing.T) {

	t.Run("Login success sets a session cookie", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, f := setup(t, ctrl)
		f.userStorer.Put(ctx, "a@x.com", users.User{Email: "a@x.com", Role: users.RoleCustomer, ExternalUID: "uid-1"})

		// given
		f.identity.EXPECT().SignIn(gomock.Any(), "a@x.com", "secret12!").Return("uid-1", nil)
		f.publisher.EXPECT().Publish(gomock.Any(), authevents.TopicName, authevents.UserLoggedIn{
			Email: "a@x.com",
		}).Return(nil)

		// when
		response := postForm(f.router, "/login", url.Values{
			"email":    {"a@x.com"},
			"password": {"secret12!"},
		})

		// then
		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), "a@x.com")
		cookie := sessionCookie(response)
		assert.NotNil(t, cookie)

		// and the cookie authenticates subsequent requests
		request, _ := http.NewRequest(http.MethodGet, "/whatever", nil)
		request.AddCookie(cookie)
		user, err := f.sut.Authenticate(ctx, request)
		assert.NoError(t, err)
		assert.Equal(t, "a@x.com", user.Email)
	})

	t.Run("Wrong password surfaces the provider message and is recorded", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, f := setup(t, ctrl)

		// given
		f.identity.EXPECT().SignIn(gomock.Any(), "a@x.com", "nope").
			Return("", myerrors.NewAuthenticationError(fmt.Errorf("INVALID_PASSWORD")))
		f.attemptLog.EXPECT().LogUnsuccessfulAttempt(gomock.Any(), "a@x.com", "INVALID_PASSWORD").Return(nil)
		f.publisher.EXPECT().Publish(gomock.Any(), authevents.TopicName, authevents.LoginFailed{
			Email:  "a@x.com",
			Reason: "INVALID_PASSWORD",
		}).Return(nil)

		// when
		response := postForm(f.router, "/login", url.Values{
			"email":    {"a@x.com"},
			"password": {"nope"},
		})

		// then
		assert.Equal(t, 403, response.Code)
		assert.Contains(t, response.Body.String(), "INVALID_PASSWORD")
		assert.Nil(t, sessionCookie(response))
	})

	t.Run("Broken attempt log never changes the login outcome", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, f := setup(t, ctrl)

		// given
		f.identity.EXPECT().SignIn(gomock.Any(), "a@x.com", "nope").
			Return("", myerrors.NewAuthenticationError(fmt.Errorf("INVALID_PASSWORD")))
		f.attemptLog.EXPECT().LogUnsuccessfulAttempt(gomock.Any(), "a@x.com", "INVALID_PASSWORD").
			Return(fmt.Errorf("disk full"))
		f.publisher.EXPECT().Publish(gomock.Any(), authevents.TopicName, gomock.Any()).
			Return(fmt.Errorf("pubsub down"))

		// when
		response := postForm(f.router, "/login", url.Values{
			"email":    {"a@x.com"},
			"password": {"nope"},
		})

		// then: still the provider's verdict, not an internal error
		assert.Equal(t, 403, response.Code)
		assert.Contains(t, response.Body.String(), "INVALID_PASSWORD")
	})

	t.Run("Unknown account after provider success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, f := setup(t, ctrl)

		// given: provider knows the account, we do not
		f.identity.EXPECT().SignIn(gomock.Any(), "ghost@x.com", "secret12!").Return("uid-ghost", nil)
		f.attemptLog.EXPECT().LogUnsuccessfulAttempt(gomock.Any(), "ghost@x.com", "no local account").Return(nil)
		f.publisher.EXPECT().Publish(gomock.Any(), authevents.TopicName, gomock.Any()).Return(nil)

		// when
		response := postForm(f.router, "/login", url.Values{
			"email":    {"ghost@x.com"},
			"password": {"secret12!"},
		})

		// then
		assert.Equal(t, 403, response.Code)
	})
}

func TestAdminLogin(t *testing.T) {

	t.Run("Admin login succeeds for an admin", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, f := setup(t, ctrl)
		f.userStorer.Put(ctx, "boss@x.com", users.User{Email: "boss@x.com", Role: users.RoleAdmin, ExternalUID: "uid-9"})

		// given
		f.identity.EXPECT().SignIn(gomock.Any(), "boss@x.com", "secret12!").Return("uid-9", nil)
		f.publisher.EXPECT().Publish(gomock.Any(), authevents.TopicName, authevents.UserLoggedIn{
			Email: "boss@x.com",
		}).Return(nil)

		// when
		response := postForm(f.router, "/admin/login", url.Values{
			"email":    {"boss@x.com"},
			"password": {"secret12!"},
		})

		// then
		assert.Equal(t, 200, response.Code)
		cookie := sessionCookie(response)
		assert.NotNil(t, cookie)

		request, _ := http.NewRequest(http.MethodGet, "/whatever", nil)
		request.AddCookie(cookie)
		user, err := f.sut.AuthorizeAdmin(ctx, request)
		assert.NoError(t, err)
		assert.Equal(t, users.RoleAdmin, user.Role)
	})

	t.Run("Customer on the admin login is rejected and keeps no session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, f := setup(t, ctrl)
		f.userStorer.Put(ctx, "a@x.com", users.User{Email: "a@x.com", Role: users.RoleCustomer, ExternalUID: "uid-1"})

		// given
		f.identity.EXPECT().SignIn(gomock.Any(), "a@x.com", "secret12!").Return("uid-1", nil)
		f.attemptLog.EXPECT().LogUnsuccessfulAttempt(gomock.Any(), "a@x.com", "role Admin required").Return(nil)
		f.publisher.EXPECT().Publish(gomock.Any(), authevents.TopicName, authevents.LoginFailed{
			Email:  "a@x.com",
			Reason: "role Admin required",
		}).Return(nil)

		// when
		response := postForm(f.router, "/admin/login", url.Values{
			"email":    {"a@x.com"},
			"password": {"secret12!"},
		})

		// then: no cookie and no lingering server-side session
		assert.Equal(t, 403, response.Code)
		assert.Nil(t, sessionCookie(response))
		sessions, err := f.sessionStorer.List(ctx)
		assert.NoError(t, err)
		assert.Empty(t, sessions)
	})

	t.Run("Customer session never authorizes admin pages", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, f := setup(t, ctrl)
		f.userStorer.Put(ctx, "a@x.com", users.User{Email: "a@x.com", Role: users.RoleCustomer, ExternalUID: "uid-1"})

		// given: a regular login
		f.identity.EXPECT().SignIn(gomock.Any(), "a@x.com", "secret12!").Return("uid-1", nil)
		f.publisher.EXPECT().Publish(gomock.Any(), authevents.TopicName, gomock.Any()).Return(nil)
		response := postForm(f.router, "/login", url.Values{
			"email":    {"a@x.com"},
			"password": {"secret12!"},
		})
		cookie := sessionCookie(response)
		assert.NotNil(t, cookie)

		// when
		request, _ := http.NewRequest(http.MethodGet, "/whatever", nil)
		request.AddCookie(cookie)
		_, err := f.sut.AuthorizeAdmin(ctx, request)

		// then
		assert.Error(t, err)
		assert.Equal(t, 403, myerrors.GetHTTPStatus(err))

		// and the rejection cleared the session: the same token no longer
		// authenticates at all
		probe, _ := http.NewRequest(http.MethodGet, "/whatever", nil)
		probe.AddCookie(cookie)
		_, err = f.sut.Authenticate(ctx, probe)
		assert.Error(t, err)
		assert.Equal(t, 403, myerrors.GetHTTPStatus(err))
		sessions, err := f.sessionStorer.List(ctx)
		assert.NoError(t, err)
		assert.Empty(t, sessions)
	})
}

func TestLogout(t *testing.T) {

	t.Run("Logout forgets the session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, f := setup(t, ctrl)
		f.userStorer.Put(ctx, "a@x.com", users.User{Email: "a@x.com", Role: users.RoleCustomer, ExternalUID: "uid-1"})

		// given: a logged-in user
		f.identity.EXPECT().SignIn(gomock.Any(), "a@x.com", "secret12!").Return("uid-1", nil)
		f.publisher.EXPECT().Publish(gomock.Any(), authevents.TopicName, authevents.UserLoggedIn{
			Email: "a@x.com",
		}).Return(nil)
		loginResponse := postForm(f.router, "/login", url.Values{
			"email":    {"a@x.com"},
			"password": {"secret12!"},
		})
		cookie := sessionCookie(loginResponse)
		assert.NotNil(t, cookie)

		f.publisher.EXPECT().Publish(gomock.Any(), authevents.TopicName, authevents.UserLoggedOut{
			Email: "a@x.com",
		}).Return(nil)

		// when
		request, _ := http.NewRequest(http.MethodPost, "/logout", nil)
		request.AddCookie(cookie)
		response := httptest.NewRecorder()
		f.router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
		expired := sessionCookie(response)
		assert.NotNil(t, expired)
		assert.Equal(t, -1, expired.MaxAge)

		// and the old token no longer authenticates
		probe, _ := http.NewRequest(http.MethodGet, "/whatever", nil)
		probe.AddCookie(cookie)
		_, err := f.sut.Authenticate(ctx, probe)
		assert.Error(t, err)
		assert.Equal(t, 403, myerrors.GetHTTPStatus(err))
	})

	t.Run("Logout without a session is fine", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, f := setup(t, ctrl)

		// when
		request, _ := http.NewRequest(http.MethodGet, "/logout", nil)
		response := httptest.NewRecorder()
		f.router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
	})
}

func TestAuthenticate(t *testing.T) {

	t.Run("No cookie", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		ctx, f := setup(t, ctrl)

		request, _ := http.NewRequest(http.MethodGet, "/whatever", nil)
		_, err := f.sut.Authenticate(ctx, request)

		assert.Error(t, err)
		assert.Equal(t, 403, myerrors.GetHTTPStatus(err))
	})

	t.Run("Session of a removed user is cleared", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, f := setup(t, ctrl)
		f.userStorer.Put(ctx, "a@x.com", users.User{Email: "a@x.com", Role: users.RoleCustomer, ExternalUID: "uid-1"})

		// given: a logged-in user whose user row disappears afterwards
		f.identity.EXPECT().SignIn(gomock.Any(), "a@x.com", "secret12!").Return("uid-1", nil)
		f.publisher.EXPECT().Publish(gomock.Any(), authevents.TopicName, gomock.Any()).Return(nil)
		response := postForm(f.router, "/login", url.Values{
			"email":    {"a@x.com"},
			"password": {"secret12!"},
		})
		cookie := sessionCookie(response)
		assert.NotNil(t, cookie)
		f.userStorer.Delete(ctx, "a@x.com")

		// when
		request, _ := http.NewRequest(http.MethodGet, "/whatever", nil)
		request.AddCookie(cookie)
		_, err := f.sut.Authenticate(ctx, request)

		// then: rejected, and the stale session is gone
		assert.Error(t, err)
		assert.Equal(t, 403, myerrors.GetHTTPStatus(err))
		sessions, err := f.sessionStorer.List(ctx)
		assert.NoError(t, err)
		assert.Empty(t, sessions)
	})

	t.Run("Unknown token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		ctx, f := setup(t, ctrl)

		request, _ := http.NewRequest(http.MethodGet, "/whatever", nil)
		request.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "bogus"})
		_, err := f.sut.Authenticate(ctx, request)

		assert.Error(t, err)
		assert.Equal(t, 403, myerrors.GetHTTPStatus(err))
	})
}

type fixture struct {
	router        *mux.Router
	sut           *service
	sessionStorer mystore.Store[session.Session]
	userStorer    mystore.Store[users.User]
	identity      *identity.MockClient
	attemptLog    *attemptlog.MockLogger
	publisher     *mypublisher.MockPublisher
}

func setup(t *testing.T, ctrl *gomock.Controller) (context.Context, fixture) {
	c := context.TODO()

	sessionStorer, _, err := mystore.New[session.Session](c)
	assert.NoError(t, err)
	logger := mylog.New("auth")
	sessions := session.NewStore(sessionStorer, mytime.RealNower{}, myuuid.RealUUIDer{}, logger)

	userStorer, _, err := mystore.New[users.User](c)
	assert.NoError(t, err)
	identityClient := identity.NewMockClient(ctrl)
	attemptLog := attemptlog.NewMockLogger(ctrl)
	publisher := mypublisher.NewMockPublisher(ctrl)

	sut := NewService(sessions, userStorer, identityClient, attemptLog, publisher, logger)
	router := mux.NewRouter()

	// Called by the following call to RegisterEndpoints()
	publisher.EXPECT().CreateTopic(c, authevents.TopicName).Return(nil)

	err = sut.RegisterEndpoints(c, router)
	assert.NoError(t, err)

	return c, fixture{
		router:        router,
		sut:           sut,
		sessionStorer: sessionStorer,
		userStorer:    userStorer,
		identity:      identityClient,
		attemptLog:    attemptLog,
		publisher:     publisher,
	}
}

func sessionCookie(response *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range response.Result().Cookies() {
		if cookie.Name == sessionCookieName {
			return cookie
		}
	}
	return nil
}

func postForm(router *mux.Router, path string, values url.Values) *httptest.ResponseRecorder {
	request, _ := http.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}
