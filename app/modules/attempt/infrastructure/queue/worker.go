package attemptqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	attemptservice "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/application"
	attempttypes "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/domain/types"
	"github.com/Black-And-White-Club/speedsolve/pkg/observability/attr"
	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// jobTimeout bounds a single pair rebuild.
const jobTimeout = 2 * time.Minute

// Rebuilder is the slice of the attempt service the worker needs.
type Rebuilder interface {
	RebuildLedger(ctx context.Context, userID, puzzleTypeID uuid.UUID) (*attempttypes.BestsInfo, error)
}

// LedgerRebuildWorker runs LedgerRebuildJob.
type LedgerRebuildWorker struct {
	river.WorkerDefaults[LedgerRebuildJob]
	rebuilder Rebuilder
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewLedgerRebuildWorker creates a new LedgerRebuildWorker.
func NewLedgerRebuildWorker(rebuilder Rebuilder, logger *slog.Logger, tracer trace.Tracer) *LedgerRebuildWorker {
	return &LedgerRebuildWorker{
		rebuilder: rebuilder,
		logger:    logger,
		tracer:    tracer,
	}
}

// Timeout overrides River's default job timeout.
func (w *LedgerRebuildWorker) Timeout(*river.Job[LedgerRebuildJob]) time.Duration {
	return jobTimeout
}

// Work rebuilds the ledger. A pair whose user or puzzle type no longer
// exists is cancelled instead of retried.
func (w *LedgerRebuildWorker) Work(ctx context.Context, job *river.Job[LedgerRebuildJob]) (err error) {
	if w.tracer != nil {
		var span trace.Span
		ctx, span = w.tracer.Start(ctx, "LedgerRebuildWorker.Work", trace.WithAttributes(
			attribute.Int64("job.id", job.ID),
			attribute.Int("job.attempt", job.Attempt),
			attribute.String("user.id", job.Args.UserID.String()),
			attribute.String("puzzle_type.id", job.Args.PuzzleTypeID.String()),
		))
		defer func() {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			span.End()
		}()
	}

	logger := w.logger.With(
		attr.Int64("job_id", job.ID),
		attr.UserID(job.Args.UserID),
		attr.PuzzleTypeID(job.Args.PuzzleTypeID),
	)
	logger.InfoContext(ctx, "Processing ledger rebuild job", attr.Int("attempt", job.Attempt))

	bests, err := w.rebuilder.RebuildLedger(ctx, job.Args.UserID, job.Args.PuzzleTypeID)
	if err != nil {
		if errors.Is(err, attemptservice.ErrUserNotFound) || errors.Is(err, attemptservice.ErrPuzzleTypeNotFound) {
			logger.WarnContext(ctx, "Cancelling ledger rebuild for missing pair", attr.Error(err))
			return river.JobCancel(err)
		}
		logger.ErrorContext(ctx, "Ledger rebuild failed", attr.Error(err))
		return fmt.Errorf("rebuild ledger: %w", err)
	}

	logger.InfoContext(ctx, "Ledger rebuild job completed", attr.Bool("has_single", bests != nil && bests.Single != nil))
	return nil
}
