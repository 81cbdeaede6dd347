// Package httpapi composes the HTTP surface: public voter routes, the
// admin surface behind session middleware, and operational endpoints.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminHandler "votegate/internal/admin/handler"
	auditHandler "votegate/internal/audit/handler"
	ballotHandler "votegate/internal/ballot/handler"
	electionHandler "votegate/internal/election/handler"
	identityHandler "votegate/internal/identity/handler"
	"votegate/internal/platform/metrics"
	registrationHandler "votegate/internal/registration/handler"
	tallyHandler "votegate/internal/tally/handler"
	adminmw "votegate/pkg/platform/middleware/admin"
	"votegate/pkg/platform/middleware/metadata"
	"votegate/pkg/platform/middleware/request"
	"votegate/pkg/platform/middleware/requesttime"
)

// Handlers bundles every mounted handler.
type Handlers struct {
	Admin        *adminHandler.Handler
	Election     *electionHandler.Handler
	Identity     *identityHandler.Handler
	Registration *registrationHandler.Handler
	Ballot       *ballotHandler.Handler
	Tally        *tallyHandler.Handler
	Audit        *auditHandler.Handler
}

// New builds the router. verifier guards the admin surface; health reports
// readiness of the backing stores.
func New(h Handlers, verifier adminmw.TokenVerifier, m *metrics.Metrics, logger *slog.Logger, health http.HandlerFunc) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(request.ID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(m.Middleware(func(req *http.Request) string {
		if ctx := chi.RouteContext(req.Context()); ctx != nil {
			if pattern := ctx.RoutePattern(); pattern != "" {
				return pattern
			}
		}
		return "unmatched"
	}))

	r.Get("/healthz", health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Public surface.
	h.Admin.Register(r)
	h.Election.RegisterPublic(r)
	h.Identity.Register(r)
	h.Registration.Register(r)
	h.Ballot.Register(r)
	h.Tally.RegisterPublic(r)

	// Admin surface.
	r.Group(func(admin chi.Router) {
		admin.Use(adminmw.RequireAdmin(verifier, logger))
		h.Election.RegisterAdmin(admin)
		h.Tally.RegisterAdmin(admin)
		h.Audit.Register(admin)
	})

	return r
}
