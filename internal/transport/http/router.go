package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/workstation-tools/internal/application/queue"
	"github.com/workstation-tools/internal/config"
	jwtinfra "github.com/workstation-tools/internal/infrastructure/jwt"
	"github.com/workstation-tools/internal/transport/http/handler"
	appmiddleware "github.com/workstation-tools/internal/transport/http/middleware"
)

// Deps holds what the queue API needs.
type Deps struct {
	Queue       queue.Service
	JWTProvider *jwtinfra.Provider
}

// NewRouter builds the downloader queue API. ctx bounds the rate limiter's
// background cleanup.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10, per client IP.
	r.Use(appmiddleware.NewThrottle(ctx, 5, 10, 10*time.Minute).Middleware)

	healthH := handler.NewHealthHandler()
	queueH := handler.NewQueueHandler(deps.Queue)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", healthH.Health)

		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.RequireToken(deps.JWTProvider))

			r.Get("/queue", queueH.List)
			r.Post("/queue", queueH.Add)
			r.Delete("/queue/{id}", queueH.Remove)
		})
	})

	return r
}
