package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	hrest "github.com/nhsengland/innovation-service-backend-api-sub008/internal/handler/http"
	wshandler "github.com/nhsengland/innovation-service-backend-api-sub008/internal/handler/ws"
)

// SetupRoutes configures the HTTP routes for the notification engine
func SetupRoutes(r chi.Router, h *hrest.NotifyMeHandler, wsHandler *wshandler.WSHandler) chi.Router {
	// ---- Global Middleware ----
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"x-user-id",
			"x-role-id",
		},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1/notifications", func(r chi.Router) {
		// Notify-me subscriptions
		r.Post("/notify-me", h.CreateSubscription)
		r.Get("/notify-me", h.ListSubscriptions)
		r.Delete("/notify-me/{subscriptionId}", h.Unsubscribe)

		// In-app notifications
		r.Get("/unread", h.ListUnread)
		r.Get("/unread/count", h.CountUnread)
		r.Patch("/{id}/read", h.MarkAsRead)

		// Email preferences
		r.Get("/preferences", h.GetPreferences)
		r.Post("/preferences", h.UpsertPreference)

		// WebSocket endpoint
		r.Get("/ws", wsHandler.HandleNotifications)
	})
	return r
}
