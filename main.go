package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/nestquest/backend/config"
	"github.com/nestquest/backend/metrics"
	"github.com/nestquest/backend/middleware"
	"github.com/nestquest/backend/queue"
	"github.com/nestquest/backend/routes"
	"github.com/nestquest/backend/utils"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.mongodb.org/mongo-driver/mongo"
)

func loadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Error loading .env file: %v", err)
	}
}

func setupRouter(client *mongo.Client, redisClient *redis.Client, pub *queue.Publisher) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.Metrics)
	routes.Routes(router, client, redisClient, pub)
	return router
}

func main() {
	loadEnv()
	utils.InitJWT(os.Getenv("JWT_KEY"))

	client, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("Failed to connect to the database: %v", err)
	}
	defer func() {
		if err := client.Disconnect(context.TODO()); err != nil {
			log.Fatalf("Error closing MongoDB connection: %v", err)
		}
		log.Println("MongoDB connection closed")
	}()

	config.InitCollections(client)
	if err := config.EnsureIndexes(client); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	redisClient := config.InitRedis()

	var pub *queue.Publisher
	if amqpURL := os.Getenv("AMQP_URL"); amqpURL != "" {
		pub, err = queue.NewPublisher(amqpURL)
		if err != nil {
			log.Printf("Event publishing disabled, AMQP connect failed: %v", err)
			pub = nil
		} else {
			defer pub.Close()
			log.Println("Connected to AMQP broker")
		}
	}

	metrics.MustRegister()

	router := setupRouter(client, redisClient, pub)

	corsOptions := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	handler := corsOptions.Handler(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:           ":" + port,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("Server running on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	<-sigCh

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Error during server shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
