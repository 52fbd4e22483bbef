package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// AllowedOrigins lists the CORS origins. Empty allows any origin.
	AllowedOrigins []string

	// Gatherer, when set, is served on /metrics.
	Gatherer prometheus.Gatherer

	// Timeout bounds each request. Zero means no limit.
	Timeout time.Duration
}

// NewRouter mounts h's endpoints.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           60 * 15,
	}))
	if opts.Timeout > 0 {
		r.Use(middleware.Timeout(opts.Timeout))
	}

	r.Get("/healthz", h.Health)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(rr chi.Router) {
		rr.Post("/projections", h.Project)
		rr.Get("/scenarios", h.ListScenarios)
		rr.Get("/scenarios/{name}", h.GetScenario)
		rr.Get("/scenarios/{name}/projection", h.ProjectScenario)
	})

	return r
}
