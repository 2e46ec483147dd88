package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/Ethan-Swanepoel/RacerBooks/lib/mylog"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mypublisher"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mypubsub"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/myqueue"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mystore"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mytime"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/myuuid"
	"github.com/Ethan-Swanepoel/RacerBooks/services/auth"
	"github.com/Ethan-Swanepoel/RacerBooks/services/auth/attemptlog"
	"github.com/Ethan-Swanepoel/RacerBooks/services/cart"
	"github.com/Ethan-Swanepoel/RacerBooks/services/identity"
	"github.com/Ethan-Swanepoel/RacerBooks/services/items"
	"github.com/Ethan-Swanepoel/RacerBooks/services/session"
	"github.com/Ethan-Swanepoel/RacerBooks/services/users"
)

func main() {
	c := context.Background()

	router := mux.NewRouter()
	nower := mytime.RealNower{}
	uuider := myuuid.RealUUIDer{}

	queue, queueCleanup, err := myqueue.New(c)
	if err != nil {
		log.Fatalf("Error creating task queue: %s", err)
	}
	defer queueCleanup()

	pubsub, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		log.Fatalf("Error creating pubsub: %s", err)
	}
	defer pubsubCleanup()

	publisher, publisherCleanup, err := mypublisher.New(c, pubsub, queue, nower)
	if err != nil {
		log.Fatalf("Error creating publisher: %s", err)
	}
	defer publisherCleanup()
	publisher.RegisterEndpoints(c, router)

	identityClient := identity.NewRESTClient(
		envOrDefault("IDENTITY_BASE_URL", "https://identitytoolkit.googleapis.com"),
		os.Getenv("IDENTITY_API_KEY"))

	sessionStorer, sessionCleanup, err := mystore.New[session.Session](c)
	if err != nil {
		log.Fatalf("Error creating session store: %s", err)
	}
	defer sessionCleanup()
	sessions := session.NewStore(sessionStorer, nower, uuider, mylog.New("session"))

	userStorer, userCleanup, err := mystore.New[users.User](c)
	if err != nil {
		log.Fatalf("Error creating user store: %s", err)
	}
	defer userCleanup()

	attemptLogger := attemptlog.NewFileLogger(
		envOrDefault("LOGIN_ATTEMPT_LOG", "failed_logins.log"), nower)

	itemStorer, itemCleanup, err := mystore.New[items.Item](c)
	if err != nil {
		log.Fatalf("Error creating item store: %s", err)
	}
	defer itemCleanup()

	cartStorer, cartCleanup, err := mystore.New[cart.Line](c)
	if err != nil {
		log.Fatalf("Error creating cart store: %s", err)
	}
	defer cartCleanup()

	authService := auth.NewService(sessions, userStorer, identityClient, attemptLogger, publisher, mylog.New("auth"))
	userService := users.NewService(userStorer, identityClient, publisher, authService, mylog.New("users"))
	itemService := items.NewService(itemStorer, publisher, pubsub, authService, mylog.New("items"))
	cartService := cart.NewService(cartStorer, itemStorer, publisher, authService, nower, mylog.New("cart"))

	err = userService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering user endpoints: %s", err)
	}
	err = authService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering auth endpoints: %s", err)
	}
	err = itemService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering item endpoints: %s", err)
	}
	err = cartService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering cart endpoints: %s", err)
	}

	startWebServerBlocking(router)
}

func startWebServerBlocking(router *mux.Router) {
	port := envOrDefault("PORT", "8080")

	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), router)
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}

func envOrDefault(name string, def string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return def
}
