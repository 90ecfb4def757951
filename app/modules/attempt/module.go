package attempt

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Black-And-White-Club/speedsolve/app/eventbus"
	attemptservice "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/application"
	attempthandlers "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/infrastructure/handlers"
	attemptqueue "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/infrastructure/queue"
	attemptdb "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/infrastructure/repositories"
	puzzletypedb "github.com/Black-And-White-Club/speedsolve/app/modules/puzzletype/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/speedsolve/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/speedsolve/config"
	"github.com/Black-And-White-Club/speedsolve/pkg/observability/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Module represents the attempt module.
type Module struct {
	AttemptService attemptservice.Service
	Handlers       *attempthandlers.AttemptHandlers
	Queue          *attemptqueue.Service
	routeConfig    attempthandlers.RouteConfig
	logger         *slog.Logger
	cancelFunc     context.CancelFunc
}

// NewAttemptModule creates and initializes a new attempt module. The River
// queue is only built for Postgres storage with the queue enabled.
func NewAttemptModule(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	m metrics.AttemptMetrics,
	tracer trace.Tracer,
	eventBus eventbus.EventBus,
	db *bun.DB,
) (*Module, error) {
	logger.InfoContext(ctx, "attempt.NewAttemptModule initializing")

	// 1. Initialize Repositories
	attempts := attemptdb.NewAttemptRepository(db)
	bests := attemptdb.NewBestRepository(db)
	users := userdb.NewRepository(db)
	puzzles := puzzletypedb.NewRepository(db)

	// 2. Initialize Service
	service := attemptservice.NewAttemptService(attempts, bests, users, puzzles, eventBus, logger, m, tracer, db,
		attemptservice.Options{
			DefaultPageSize:    cfg.Stats.DefaultPageSize,
			MaxPageSize:        cfg.Stats.MaxPageSize,
			RebuildConcurrency: cfg.Stats.RebuildConcurrency,
		})

	// 3. Initialize Queue
	var (
		queue    *attemptqueue.Service
		enqueuer attempthandlers.RebuildEnqueuer
	)
	if cfg.Queue.Enabled && cfg.Storage.Driver == config.DriverPostgres {
		worker := attemptqueue.NewLedgerRebuildWorker(service, logger, tracer)
		q, err := attemptqueue.NewService(ctx,
			attemptqueue.Options{DSN: cfg.Storage.DSN, MaxWorkers: cfg.Queue.MaxWorkers},
			service, attempts, db, logger, m, worker)
		if err != nil {
			return nil, fmt.Errorf("failed to create attempt queue: %w", err)
		}
		queue, enqueuer = q, q
	} else if cfg.Queue.Enabled {
		logger.WarnContext(ctx, "Job queue requires postgres storage, rebuilds will run in process",
			slog.String("driver", cfg.Storage.Driver))
	}

	// 4. Initialize Handlers
	handlers := attempthandlers.NewAttemptHandlers(service, eventBus, enqueuer, logger, tracer)

	routeConfig := attempthandlers.RouteConfig{AllowedOrigins: cfg.HTTP.AllowedOrigins}
	if cfg.HTTP.RateLimitRPS > 0 {
		routeConfig.Limiter = attempthandlers.NewIPRateLimiter(rate.Limit(cfg.HTTP.RateLimitRPS), cfg.HTTP.RateLimitBurst)
	}

	return &Module{
		AttemptService: service,
		Handlers:       handlers,
		Queue:          queue,
		routeConfig:    routeConfig,
		logger:         logger,
	}, nil
}

// Mount registers the module's HTTP routes.
func (m *Module) Mount(router chi.Router) {
	m.Handlers.Mount(router, m.routeConfig)
}

// Run starts the attempt module and blocks until ctx is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting attempt module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.Queue != nil {
		if err := m.Queue.Start(ctx); err != nil {
			m.logger.ErrorContext(ctx, "Attempt queue failed to start", "error", err)
		}
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Attempt module goroutine stopped")
}

// Close shuts down the attempt module.
func (m *Module) Close(ctx context.Context) error {
	m.logger.Info("Stopping attempt module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.Queue != nil {
		if err := m.Queue.Stop(ctx); err != nil {
			m.logger.Error("Error stopping attempt queue", "error", err)
			return fmt.Errorf("error stopping attempt queue: %w", err)
		}
	}

	m.logger.Info("Attempt module stopped")
	return nil
}
