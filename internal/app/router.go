package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/securegate/securegate/internal/admin"
	"github.com/securegate/securegate/internal/auth"
	"github.com/securegate/securegate/internal/gate"
	"github.com/securegate/securegate/internal/observability"
	"github.com/securegate/securegate/internal/rbac"
	"github.com/securegate/securegate/internal/resource"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	AuthHandler     *auth.Handler
	AdminHandler    *admin.Handler
	ResourceHandler *resource.Handler
	Gate            gate.Middleware
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with SecureGate defaults. The gate's
// Authenticate middleware wraps the whole tree; its classify step lets
// unprotected prefixes through untouched. Each protected subtree declares
// its required permission once.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)
	r.Use(params.Gate.Authenticate)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		// Tighter per-IP limit on the pre-authentication surface.
		r.Use(httprate.Limit(30, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		params.AuthHandler.MountRoutes(r)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(params.Gate.Require(rbac.PermAdmin))
		params.AdminHandler.MountRoutes(r)
	})

	r.Route("/resource", func(r chi.Router) {
		r.Use(params.Gate.Require(rbac.PermReadData))
		params.ResourceHandler.MountRoutes(r)
	})

	return r
}
