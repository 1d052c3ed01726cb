// Package httptransport assembles the public HTTP surface: middleware
// chain, authenticated domain routes, unauthenticated gateway callbacks,
// and the operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"medcommons/internal/platform/metrics"
	"medcommons/internal/platform/middleware"
)

// Registrar mounts a handler's routes on a router.
type Registrar interface {
	Register(r chi.Router)
}

// CallbackRegistrar mounts unauthenticated gateway callback routes.
type CallbackRegistrar interface {
	RegisterCallbacks(r chi.Router)
}

type Deps struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	TokenValidator middleware.TokenValidator

	// Authenticated domain surfaces.
	Registry      Registrar
	Ledger        Registrar
	Query         Registrar
	Governance    Registrar
	Notifications Registrar

	// Unauthenticated gateway callbacks.
	Callbacks CallbackRegistrar

	// Health reports readiness of backing stores; nil checks are skipped.
	Health func(r chi.Router)
}

// NewRouter wires the middleware chain and all mounted surfaces.
func NewRouter(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Latency(deps.Metrics))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	if deps.Health != nil {
		deps.Health(r)
	}

	// Gateway callbacks carry no bearer token; trust comes from proofs and
	// the pending-request binding.
	if deps.Callbacks != nil {
		r.Group(func(cb chi.Router) {
			cb.Use(middleware.ContentTypeJSON)
			deps.Callbacks.RegisterCallbacks(cb)
		})
	}

	r.Group(func(api chi.Router) {
		api.Use(middleware.RequireAuth(deps.TokenValidator, deps.Logger))
		for _, h := range []Registrar{
			deps.Registry,
			deps.Ledger,
			deps.Query,
			deps.Governance,
			deps.Notifications,
		} {
			if h != nil {
				h.Register(api)
			}
		}
	})

	return r
}
