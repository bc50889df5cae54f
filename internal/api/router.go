package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"prospect-lookup/internal/auth"
	"prospect-lookup/internal/common/metrics"
	"prospect-lookup/internal/common/observability"
)

// HealthChecker reports whether a backing service is reachable.
type HealthChecker interface {
	Ping() error
}

// NewRouter wires every endpoint. Search and enrichment routes sit behind the
// bearer-token middleware; health, metrics, and auth routes do not.
func NewRouter(h *Handlers, obs *observability.Observability, health map[string]HealthChecker, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(requestTimeout))
	r.Use(instrument(obs))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		checks := make(map[string]string, len(health))
		for name, checker := range health {
			if err := checker.Ping(); err != nil {
				checks[name] = "down"
				status = http.StatusServiceUnavailable
			} else {
				checks[name] = "up"
			}
		}
		writeJSON(w, status, map[string]interface{}{"status": statusWord(status), "checks": checks})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.HandleRegister)
		r.Post("/login", h.HandleLogin)
		r.Post("/forgot-password", h.HandleForgotPassword)
		r.Post("/reset-password", h.HandleResetPassword)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(h.auth, writeError))

		r.Post("/search", h.HandleSearch)
		r.Post("/validate-phones", h.HandleValidatePhones)
		r.Post("/validate-emails", h.HandleValidateEmails)
		r.Get("/transactions/{constituentId}", h.HandleTransactions)
		r.Post("/philanthropy", h.HandlePhilanthropy)
		r.Post("/insights", h.HandleInsights)
		r.Get("/history", h.HandleHistory)
		r.Get("/recent", h.HandleRecent)
	})

	return r
}

func statusWord(status int) string {
	if status == http.StatusOK {
		return "healthy"
	}
	return "degraded"
}

// instrument records request counts and durations per route.
func instrument(obs *observability.Observability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			status := strconv.Itoa(ww.Status())
			duration := time.Since(start)

			metrics.RequestDuration.WithLabelValues(route, status).Observe(duration.Seconds())
			if obs != nil {
				obs.RecordRequest(r.Context(), route, status)
				obs.RecordRequestDuration(r.Context(), duration, route)
			}
		})
	}
}
