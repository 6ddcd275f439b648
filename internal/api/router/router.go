package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"restaurante-api/internal/api/middleware"
	"restaurante-api/internal/auth"
	"restaurante-api/internal/logger"
)

// RouteRegistrar mounts a resource's routes on a router group.
type RouteRegistrar interface {
	RegisterRoutes(r chi.Router)
}

// New assembles the HTTP surface: public authentication endpoints plus
// the resource handlers behind bearer authentication under /api/v1.
func New(log *logger.Logger, tokenMaker *auth.TokenMaker, public RouteRegistrar, protected ...RouteRegistrar) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.Recover(log))
	r.Use(middleware.Logging(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	public.RegisterRoutes(r)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authentication(tokenMaker))
		for _, h := range protected {
			h.RegisterRoutes(r)
		}
	})

	return r
}
