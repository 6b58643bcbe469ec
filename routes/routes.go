package routes

import (
	"github.com/gorilla/mux"
	"github.com/nestquest/backend/controllers"
	"github.com/nestquest/backend/middleware"
	"github.com/nestquest/backend/queue"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

func Routes(router *mux.Router, client *mongo.Client, redisClient *redis.Client, pub *queue.Publisher) {
	router.HandleFunc("/healthz", controllers.Healthz(client, redisClient)).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	// Auth routes
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/signup", controllers.Signup(pub)).Methods("POST")
	auth.HandleFunc("/signin", controllers.Signin()).Methods("POST")
	auth.HandleFunc("/google", controllers.Google(pub)).Methods("POST")
	auth.HandleFunc("/signout", controllers.Signout()).Methods("GET")

	// Public listing routes: single reads and search
	api.HandleFunc("/listing/get/{id}", controllers.GetListing()).Methods("GET")
	api.HandleFunc("/listing/get", controllers.SearchListings(redisClient)).Methods("GET")

	// Public profile read; the handler never serializes the credential
	api.HandleFunc("/user/{id}", controllers.GetUser()).Methods("GET")

	// User routes (session required)
	user := api.PathPrefix("/user").Subrouter()
	user.Use(middleware.RequireAuth)
	user.HandleFunc("/update/{id}", controllers.UpdateUser()).Methods("POST")
	user.HandleFunc("/delete/{id}", controllers.DeleteUser()).Methods("DELETE")
	user.HandleFunc("/listings/{id}", controllers.GetUserListings()).Methods("GET")

	// Listing mutations (session required, ownership checked in handlers)
	listing := api.PathPrefix("/listing").Subrouter()
	listing.Use(middleware.RequireAuth)
	listing.HandleFunc("/create", controllers.CreateListing(redisClient, pub)).Methods("POST")
	listing.HandleFunc("/update/{id}", controllers.UpdateListing(redisClient)).Methods("POST")
	listing.HandleFunc("/delete/{id}", controllers.DeleteListing(redisClient)).Methods("DELETE")

	// Admin login only needs the email/passcode/password triple
	api.HandleFunc("/admin/login", controllers.AdminLogin()).Methods("POST")

	// Admin routes (session + live admin flag)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAuth, middleware.RequireAdmin)
	admin.HandleFunc("/users", controllers.GetAllUsers()).Methods("GET")
	admin.HandleFunc("/listings", controllers.GetAllListings()).Methods("GET")
	admin.HandleFunc("/listings/create", controllers.AdminCreateListing(redisClient)).Methods("POST")
	admin.HandleFunc("/listings/{id}/approval", controllers.UpdateListingApproval(redisClient, pub)).Methods("PUT")
	admin.HandleFunc("/listings/{id}", controllers.AdminDeleteListing(redisClient)).Methods("DELETE")
	admin.HandleFunc("/settings/approval", controllers.UpdateApprovalSettings(redisClient)).Methods("POST")
}
