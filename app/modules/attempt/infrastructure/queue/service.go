package attemptqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	attemptdb "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/infrastructure/repositories"
	"github.com/Black-And-White-Club/speedsolve/pkg/observability/attr"
	"github.com/Black-And-White-Club/speedsolve/pkg/observability/metrics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
)

const metricsService = "river"

// PairLister enumerates the pairs a full rebuild covers.
type PairLister interface {
	ListPairs(ctx context.Context, db bun.IDB) ([]attemptdb.Pair, error)
}

// Options configures the queue service.
type Options struct {
	DSN        string
	MaxWorkers int
}

// Service schedules ledger rebuilds on River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	pairs   PairLister
	db      bun.IDB
	logger  *slog.Logger
	metrics metrics.AttemptMetrics
}

// NewService opens a pgx pool on opts.DSN, migrates River's schema and
// builds a client that works the ledgers queue.
func NewService(
	ctx context.Context,
	opts Options,
	rebuilder Rebuilder,
	pairs PairLister,
	db bun.IDB,
	logger *slog.Logger,
	m metrics.AttemptMetrics,
	worker *LedgerRebuildWorker,
) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_attempt_queue_service"),
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	m.RecordOperationAttempt(ctx, "initialize_service", metricsService)
	ctxLogger.InfoContext(ctx, "Initializing ledger queue service")

	fail := func(msg string, err error) (*Service, error) {
		ctxLogger.ErrorContext(ctx, msg, attr.Error(err))
		m.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("%s: %w", msg, err)
	}

	config, err := pgxpool.ParseConfig(opts.DSN)
	if err != nil {
		return fail("failed to parse DSN", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fail("failed to create pgx pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fail("failed to ping database", err)
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return fail("failed to migrate river schema", err)
	}

	if worker == nil {
		worker = NewLedgerRebuildWorker(rebuilder, ctxLogger, nil)
	}
	workers := river.NewWorkers()
	river.AddWorker(workers, worker)

	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			QueueLedgers: {MaxWorkers: maxWorkers},
		},
		Workers: workers,
		Logger:  logger,
	})
	if err != nil {
		pool.Close()
		return fail("failed to create River client", err)
	}

	m.RecordOperationSuccess(ctx, "initialize_service", metricsService)
	m.RecordOperationDuration(ctx, "initialize_service", metricsService, time.Since(start))
	ctxLogger.InfoContext(ctx, "Ledger queue service initialized", attr.Int("max_workers", maxWorkers))

	return &Service{
		client:  client,
		pool:    pool,
		pairs:   pairs,
		db:      db,
		logger:  logger.With(attr.String("component", "river_queue")),
		metrics: m,
	}, nil
}

// Migrate brings River's tables up to date.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{}); err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}
	return nil
}

// Start starts working jobs.
func (s *Service) Start(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Starting ledger queue service")
	if err := s.client.Start(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Failed to start River client", attr.Error(err))
		return fmt.Errorf("failed to start River client: %w", err)
	}
	return nil
}

// Stop waits for running jobs to finish and releases the pool.
func (s *Service) Stop(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Stopping ledger queue service")
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Failed to stop River client", attr.Error(err))
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	return nil
}

// EnqueueRebuild schedules a rebuild for one pair. A rebuild already
// pending for the pair absorbs the request.
func (s *Service) EnqueueRebuild(ctx context.Context, userID, puzzleTypeID uuid.UUID) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "enqueue_rebuild", metricsService)

	res, err := s.client.Insert(ctx, LedgerRebuildJob{UserID: userID, PuzzleTypeID: puzzleTypeID}, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to enqueue ledger rebuild",
			attr.UserID(userID), attr.PuzzleTypeID(puzzleTypeID), attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "enqueue_rebuild", metricsService)
		return fmt.Errorf("failed to enqueue ledger rebuild: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "enqueue_rebuild", metricsService)
	s.metrics.RecordOperationDuration(ctx, "enqueue_rebuild", metricsService, time.Since(start))
	s.logger.InfoContext(ctx, "Ledger rebuild enqueued",
		attr.UserID(userID),
		attr.PuzzleTypeID(puzzleTypeID),
		attr.Int64("job_id", res.Job.ID),
		attr.Bool("duplicate", res.UniqueSkippedAsDuplicate),
	)
	return nil
}

// EnqueueRebuildAll schedules a rebuild for every pair with attempts and
// returns how many jobs were submitted.
func (s *Service) EnqueueRebuildAll(ctx context.Context) (int, error) {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "enqueue_rebuild_all", metricsService)

	pairs, err := s.pairs.ListPairs(ctx, s.db)
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "enqueue_rebuild_all", metricsService)
		return 0, fmt.Errorf("failed to list pairs: %w", err)
	}
	if len(pairs) == 0 {
		s.metrics.RecordOperationSuccess(ctx, "enqueue_rebuild_all", metricsService)
		return 0, nil
	}

	params := make([]river.InsertManyParams, len(pairs))
	for i, p := range pairs {
		params[i] = river.InsertManyParams{
			Args: LedgerRebuildJob{UserID: p.UserID, PuzzleTypeID: p.PuzzleTypeID},
		}
	}

	if _, err := s.client.InsertMany(ctx, params); err != nil {
		s.logger.ErrorContext(ctx, "Failed to enqueue ledger rebuilds", attr.Int("pairs", len(pairs)), attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "enqueue_rebuild_all", metricsService)
		return 0, fmt.Errorf("failed to enqueue ledger rebuilds: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "enqueue_rebuild_all", metricsService)
	s.metrics.RecordOperationDuration(ctx, "enqueue_rebuild_all", metricsService, time.Since(start))
	s.logger.InfoContext(ctx, "Ledger rebuilds enqueued", attr.Int("pairs", len(pairs)))
	return len(pairs), nil
}

// PendingJobs counts ledger jobs that have not finished yet.
func (s *Service) PendingJobs(ctx context.Context) (int, error) {
	var count int
	err := s.db.NewSelect().
		Table("river_job").
		ColumnExpr("COUNT(*)").
		Where("kind = ?", kindLedgerRebuild).
		Where("state IN (?)", bun.In([]string{"available", "scheduled", "running", "retryable"})).
		Scan(ctx, &count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending jobs: %w", err)
	}
	return count, nil
}

// HealthCheck verifies the queue's tables are reachable.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("river client is nil")
	}
	if _, err := s.PendingJobs(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Queue service health check failed", attr.Error(err))
		return fmt.Errorf("queue service health check failed: %w", err)
	}
	return nil
}
