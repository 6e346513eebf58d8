package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/api/handlers"
	custommiddleware "github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/api/middleware"
	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/config"
	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(systemService *service.SystemService, entryService *service.EntryService, attachmentService *service.AttachmentService, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		entryHandler := handlers.NewEntryHandler(entryService, attachmentService)
		attachmentHandler := handlers.NewAttachmentHandler(attachmentService)

		r.Route("/entry", func(r chi.Router) {
			r.Get("/", entryHandler.List)
			r.Post("/", entryHandler.Create)
			r.Get("/search", entryHandler.Search)
			r.Get("/accounts", entryHandler.AccountCounts)
			r.Get("/stats", entryHandler.Stats)

			r.Route("/{entryId}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateEntryIDMiddleware)
				r.Get("/", entryHandler.Get)
				r.Put("/", entryHandler.Update)
				r.Delete("/", entryHandler.Delete)
				r.Post("/complete", entryHandler.SetCompleted)
				r.Post("/cycle", entryHandler.Cycle)

				r.Route("/attachment", func(r chi.Router) {
					r.Get("/", attachmentHandler.ListForEntry)
					r.Post("/", attachmentHandler.Upload)
					r.Delete("/", attachmentHandler.DeleteAllForEntry)
				})
			})
		})

		r.Route("/attachment/{attachmentId}", func(r chi.Router) {
			r.Use(custommiddleware.ValidateAttachmentIDMiddleware)
			r.Get("/", attachmentHandler.Download)
			r.Delete("/", attachmentHandler.Delete)
		})
	})

	return r
}
