package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router builds the HTTP handler: module APIs, health and metrics.
func (app *App) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", app.handleHealth)
	if app.Config.Observability.MetricsAddress == "" {
		r.Handle("/metrics", app.metricsHandler())
	}

	app.AttemptModule.Mount(r)
	return r
}

func (app *App) metricsHandler() http.Handler {
	return promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{Registry: app.Registry})
}

func (app *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := app.DB.PingContext(r.Context()); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	if q := app.AttemptModule.Queue; q != nil {
		if err := q.HealthCheck(r.Context()); err != nil {
			http.Error(w, "queue unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
