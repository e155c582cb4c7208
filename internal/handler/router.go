package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oneminute/oneminute-go/internal/middleware"
)

// Routes holds everything the HTTP router mounts.
type Routes struct {
	Generator   *GeneratorHandler
	Sessions    *SessionHandler
	Events      *EventsHandler
	TokenSecret string
	// RateLimit guards the generating endpoints; nil disables limiting.
	RateLimit func(http.Handler) http.Handler
	// Metrics is served on /metrics when set.
	Metrics http.Handler
}

// NewRouter wires the API routes.
func NewRouter(rt Routes) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if rt.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.Metrics)
	}

	r.Group(func(r chi.Router) {
		if rt.RateLimit != nil {
			r.Use(rt.RateLimit)
		}
		r.Post("/api/v1/generate", rt.Generator.HandleGenerate)
		r.Post("/api/v1/strength", rt.Generator.HandleStrength)
		r.Post("/api/v1/sessions", rt.Sessions.HandleCreate)

		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionAuth(rt.TokenSecret))

			r.Get("/api/v1/session", rt.Sessions.HandleGet)
			r.Delete("/api/v1/session", rt.Sessions.HandleDelete)
			r.Put("/api/v1/session/length", rt.Sessions.HandleSetLength)
			r.Put("/api/v1/session/options", rt.Sessions.HandleSetOptions)
			r.Post("/api/v1/session/options/{option}/toggle", rt.Sessions.HandleToggleOption)
			r.Post("/api/v1/session/regenerate", rt.Sessions.HandleRegenerate)
			r.Post("/api/v1/session/visibility", rt.Sessions.HandleToggleVisibility)
			r.Post("/api/v1/session/copy", rt.Sessions.HandleCopy)
		})
	})

	// The event stream is long-lived, so it stays outside the rate limiter.
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionAuth(rt.TokenSecret))
		r.Get("/api/v1/session/events", rt.Events.HandleEvents)
	})

	return r
}
