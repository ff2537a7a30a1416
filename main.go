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
	"github.com/rs/cors"

	"github.com/harborview/property_market_system/availability"
	"github.com/harborview/property_market_system/config"
	"github.com/harborview/property_market_system/feedback"
	"github.com/harborview/property_market_system/finalize"
	"github.com/harborview/property_market_system/notify"
	"github.com/harborview/property_market_system/realtime"
	"github.com/harborview/property_market_system/routes"
	"github.com/harborview/property_market_system/sequence"
	"github.com/harborview/property_market_system/stats"
	"github.com/harborview/property_market_system/store/mongostore"
)

func loadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Error loading .env file: %v", err)
	}
}

func main() {
	loadEnv()

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

	redisClient := config.InitRedis()

	stores := mongostore.New(config.Database(client))

	dispatcher := realtime.NewDispatcher(realtime.NewRedisPublisher(redisClient), 256)
	defer dispatcher.Close()

	allocator := sequence.NewAllocator(stores.Sequences)
	guard := availability.NewGuard(stores.Properties)
	recalc := stats.NewRecalculator(stores.Properties, stores.Owners)
	scheduler := feedback.NewScheduler(stores.Reviews, stores.Feedback)
	notifier := notify.NewService(stores.Notifications, dispatcher)
	tracker := notify.NewTracker(stores.Notifications)
	finalizer := finalize.New(stores.Transactions, stores.Properties, stores.Users, allocator, guard, recalc, scheduler, notifier, dispatcher)

	router := mux.NewRouter()
	routes.Routes(router, routes.Deps{
		Stores:    stores,
		Redis:     redisClient,
		Allocator: allocator,
		Recalc:    recalc,
		Scheduler: scheduler,
		Notifier:  notifier,
		Tracker:   tracker,
		Finalizer: finalizer,
	})

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
