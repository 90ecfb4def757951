package attempthandlers

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/speedsolve/app/eventbus"
	attemptservice "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/application"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
)

// RebuildEnqueuer schedules ledger rebuilds in the background. It is nil
// when the job queue is disabled.
type RebuildEnqueuer interface {
	EnqueueRebuildAll(ctx context.Context) (int, error)
}

// AttemptHandlers serves the attempt HTTP API.
type AttemptHandlers struct {
	service  attemptservice.Service
	eventBus eventbus.EventBus
	queue    RebuildEnqueuer
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewAttemptHandlers creates a new AttemptHandlers instance.
func NewAttemptHandlers(
	service attemptservice.Service,
	eventBus eventbus.EventBus,
	queue RebuildEnqueuer,
	logger *slog.Logger,
	tracer trace.Tracer,
) *AttemptHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttemptHandlers{
		service:  service,
		eventBus: eventBus,
		queue:    queue,
		logger:   logger,
		tracer:   tracer,
	}
}

// RouteConfig controls the middleware placed in front of the API.
type RouteConfig struct {
	AllowedOrigins []string
	Limiter        *IPRateLimiter
}

// Mount registers the API under /api.
func (h *AttemptHandlers) Mount(router chi.Router, cfg RouteConfig) {
	router.Route("/api", func(r chi.Router) {
		r.Use(TracingMiddleware(h.tracer))
		r.Use(CORSMiddleware(cfg.AllowedOrigins))
		if cfg.Limiter != nil {
			r.Use(RateLimitMiddleware(cfg.Limiter))
		}

		r.Route("/attempts", func(r chi.Router) {
			r.Get("/", h.HandleListAttempts)
			r.Post("/", h.HandleCreateAttempt)
			r.Post("/batch", h.HandleBatchCreateAttempts)
			r.Post("/import", h.HandleImportAttempts)
			r.Get("/stream", h.HandleStreamAttempts)
		})

		r.Route("/bests", func(r chi.Router) {
			r.Get("/", h.HandleCurrentBests)
			r.Post("/rebuild", h.HandleRebuildLedger)
			r.Post("/rebuild-all", h.HandleRebuildAll)
			r.Get("/chart.png", h.HandleLedgerChart)
		})
	})
}
