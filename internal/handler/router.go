package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/lenvers-aubagne/lenvers-web/internal/service"
	"github.com/lenvers-aubagne/lenvers-web/internal/session"
)

// NewRouter builds the site's router. metrics may be nil.
func NewRouter(log zerolog.Logger, h *SiteHandler, store *session.Store, svc *service.SiteService, metrics http.Handler) chi.Router {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(log))             // structured access log

	// Operational endpoints carry no visit.
	r.Get("/health", h.HealthCheck)
	r.Get("/qr.png", h.QRCode)
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(Visits(store, svc, log))

		r.Get("/", h.Page)
		r.Post("/navigate", h.Navigate)
		r.Post("/reservation", h.Reserve)
		r.Post("/newsletter", h.Subscribe)
		r.Post("/contact", h.Contact)
	})

	return r
}
