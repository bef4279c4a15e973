package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger) // Custom conditional HTTP logger
	r.Use(middleware.Recoverer)
	r.Use(cors.AllowAll().Handler)

	// WebSocket and image uploads stay outside the request timeout: both
	// are long-lived.
	r.Get("/ws", h.Hub.ServeWs)
	r.Handle("/img/*", http.StripPrefix("/img/", http.FileServer(http.Dir(h.UploadsDir))))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/", h.handleIndex)
		r.Get("/health", h.handleHealth)
		r.Get("/join/qr", h.handleJoinQR)

		r.Get("/api/questions", h.handleGetQuestions)
		r.Post("/api/questions", h.handleCreateQuestion)
	})

	return r
}
