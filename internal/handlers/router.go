package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"pillpal-backend/internal/middleware"
)

// Routes holds every handler mounted by the router
type Routes struct {
	Users         *UserHandler
	Medications   *MedicationHandler
	Adherence     *AdherenceHandler
	Analytics     *AnalyticsHandler
	Notifications *NotificationHandler
	Verifications *VerificationHandler
	WebSocket     *WebSocketHandler
	Health        *HealthHandler

	Tokens      middleware.TokenValidator
	RateLimiter *middleware.RateLimiter
}

// NewRouter builds the HTTP API
func NewRouter(rt Routes) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{middleware.DataSourceHeader},
		MaxAge:         300,
	}))
	r.Use(middleware.TrackDataSource)

	r.Get("/health", rt.Health.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", rt.Health.Health)

		// Public routes
		r.Group(func(r chi.Router) {
			if rt.RateLimiter != nil {
				r.Use(rt.RateLimiter.Handler)
			}
			r.Post("/users", rt.Users.CreateUser)
			r.Post("/auth/oidc", rt.Users.SignIn)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(rt.Tokens))

			r.Get("/me", rt.Users.Me)
			r.Patch("/me", rt.Users.UpdateProfile)
			r.Put("/me/push-token", rt.Users.UpdatePushToken)

			r.Route("/medications", func(r chi.Router) {
				r.Get("/", rt.Medications.List)
				r.Post("/", rt.Medications.Create)
				r.Get("/{id}", rt.Medications.Get)
				r.Patch("/{id}", rt.Medications.Update)
				r.Delete("/{id}", rt.Medications.Delete)
				r.Put("/{id}/active", rt.Medications.SetActive)
				r.Get("/{id}/adherence", rt.Medications.Adherence)
			})

			r.Get("/adherence", rt.Adherence.List)
			r.Post("/adherence", rt.Adherence.Create)
			r.Get("/adherence/summary", rt.Adherence.Summary)

			r.Get("/analytics", rt.Analytics.Get)

			r.Get("/notifications", rt.Notifications.List)
			r.Post("/notifications/{id}/read", rt.Notifications.MarkRead)
			r.Get("/notifications/preferences", rt.Notifications.Preferences)
			r.Put("/notifications/preferences", rt.Notifications.UpdatePreferences)

			r.Post("/verifications", rt.Verifications.Start)
			r.Get("/verifications/{id}", rt.Verifications.Get)
			r.Delete("/verifications/{id}", rt.Verifications.Cancel)
			r.Post("/verifications/{id}/capture", rt.Verifications.Capture)
			r.Post("/verifications/{id}/photo", rt.Verifications.Photo)
		})
	})

	r.Get("/ws", rt.WebSocket.HandleWebSocket)

	return r
}
