// Package server hosts the greeting route: router, framework defaults,
// operational endpoints, and the listen/shutdown lifecycle.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scrite-studio/internal/greeting"
	"scrite-studio/internal/limiter"
)

// Options tune the router. The zero value serves the greeting with no rate
// limiting and no access log.
type Options struct {
	// Limiter, when set, guards the greeting route.
	Limiter *limiter.RateLimiter
	// AccessLog writes one line per request to stdout.
	AccessLog bool
}

// NewRouter builds the service handler. Unknown paths get the router's
// default 404 and other methods on a known path its default 405.
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	if opts.AccessLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(instrument)

	r.Group(func(r chi.Router) {
		if opts.Limiter != nil {
			r.Use(opts.Limiter.Middleware)
		}
		r.Get(greeting.Path, greeting.Handler)
	})

	r.Get(openAPIPath, serveOpenAPI)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
