package routes

import (
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"github.com/harborview/property_market_system/controllers"
	"github.com/harborview/property_market_system/feedback"
	"github.com/harborview/property_market_system/finalize"
	"github.com/harborview/property_market_system/middleware"
	"github.com/harborview/property_market_system/notify"
	"github.com/harborview/property_market_system/sequence"
	"github.com/harborview/property_market_system/stats"
	"github.com/harborview/property_market_system/store/mongostore"
)

type Deps struct {
	Stores    *mongostore.Stores
	Redis     *redis.Client
	Allocator *sequence.Allocator
	Recalc    *stats.Recalculator
	Scheduler *feedback.Scheduler
	Notifier  *notify.Service
	Tracker   *notify.Tracker
	Finalizer *finalize.Finalizer
}

func Routes(router *mux.Router, d Deps) {
	// Auth routes
	router.HandleFunc("/register", controllers.RegisterUser(d.Stores.Users)).Methods("POST")
	router.HandleFunc("/login", controllers.LoginUser(d.Stores.Users)).Methods("POST")

	// Routes that require authentication
	authenticated := router.PathPrefix("/api").Subrouter()
	authenticated.Use(middleware.AuthMiddleware)

	// Property routes
	authenticated.HandleFunc("/properties", controllers.CreateProperty(d.Stores.Properties, d.Recalc, d.Notifier, d.Redis)).Methods("POST")
	authenticated.HandleFunc("/properties", controllers.GetAllProperties(d.Stores.Properties, d.Redis)).Methods("GET")
	authenticated.HandleFunc("/properties/{id}", controllers.GetPropertyByID(d.Stores.Properties)).Methods("GET")
	authenticated.HandleFunc("/properties/{id}", controllers.UpdateProperty(d.Stores.Properties, d.Recalc, d.Redis)).Methods("PUT")
	authenticated.HandleFunc("/properties/{id}", controllers.DeleteProperty(d.Stores.Properties, d.Recalc, d.Redis)).Methods("DELETE")
	authenticated.HandleFunc("/properties/{id}/reviews", controllers.GetPropertyReviews(d.Stores.Reviews)).Methods("GET")

	// Owner routes
	authenticated.HandleFunc("/owners", controllers.CreateOwner(d.Stores.Owners, d.Allocator, d.Notifier)).Methods("POST")
	authenticated.HandleFunc("/owners", controllers.GetOwners(d.Stores.Owners)).Methods("GET")
	authenticated.HandleFunc("/owners/{id}", controllers.GetOwnerByID(d.Stores.Owners)).Methods("GET")
	authenticated.HandleFunc("/owners/{id}", controllers.UpdateOwner(d.Stores.Owners)).Methods("PUT")
	authenticated.HandleFunc("/owners/{id}", controllers.DeleteOwner(d.Stores.Owners)).Methods("DELETE")
	authenticated.HandleFunc("/owners/{id}/recalculate", controllers.RecalculateOwnerStats(d.Recalc)).Methods("POST")

	// Transaction routes: POST is the payment-completed event intake
	authenticated.HandleFunc("/transactions", controllers.CreateTransaction(d.Finalizer)).Methods("POST")
	authenticated.HandleFunc("/transactions", controllers.GetTransactions(d.Stores.Transactions)).Methods("GET")
	authenticated.HandleFunc("/transactions/{id}", controllers.DeleteTransaction(d.Stores.Transactions, d.Recalc)).Methods("DELETE")

	// Notification routes
	authenticated.HandleFunc("/notifications/admin", controllers.GetAdminNotifications(d.Tracker)).Methods("GET")
	authenticated.HandleFunc("/notifications/mobile", controllers.GetMobileNotifications(d.Tracker)).Methods("GET")
	authenticated.HandleFunc("/notifications/admin/{id}/read", controllers.MarkAdminNotificationRead(d.Tracker)).Methods("PUT")
	authenticated.HandleFunc("/notifications/mobile/{id}/read", controllers.MarkMobileNotificationRead(d.Tracker)).Methods("PUT")
	authenticated.HandleFunc("/notifications/mobile/{id}/hide", controllers.HideMobileNotification(d.Tracker)).Methods("PUT")
	authenticated.HandleFunc("/notifications/unread", controllers.GetUnreadCounts(d.Tracker)).Methods("GET")

	// Review and feedback routes
	authenticated.HandleFunc("/reviews", controllers.CreateReview(d.Stores.Reviews, d.Scheduler)).Methods("POST")
	authenticated.HandleFunc("/feedback/pending", controllers.GetPendingFeedback(d.Stores.Feedback)).Methods("GET")
	authenticated.HandleFunc("/feedback/pending/{id}", controllers.CancelPendingFeedback(d.Scheduler)).Methods("DELETE")
}
