package attemptservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/speedsolve/app/eventbus"
	"github.com/Black-And-White-Club/speedsolve/app/modules/attempt/application/parsers"
	attemptdb "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/infrastructure/repositories"
	puzzletypedb "github.com/Black-And-White-Club/speedsolve/app/modules/puzzletype/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/speedsolve/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/speedsolve/pkg/observability/attr"
	"github.com/Black-And-White-Club/speedsolve/pkg/observability/metrics"
	"github.com/Black-And-White-Club/speedsolve/pkg/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "AttemptService"

// Options tunes paging and bulk rebuilds. Zero values take the defaults.
type Options struct {
	DefaultPageSize    int
	MaxPageSize        int
	RebuildConcurrency int
	Palette            *ChartPalette
}

func (o Options) withDefaults() Options {
	if o.DefaultPageSize <= 0 {
		o.DefaultPageSize = 10
	}
	if o.MaxPageSize <= 0 {
		o.MaxPageSize = 500
	}
	if o.RebuildConcurrency <= 0 {
		o.RebuildConcurrency = 4
	}
	if o.Palette == nil {
		o.Palette = &DefaultPalette
	}
	return o
}

var _ Service = (*AttemptService)(nil)

// AttemptService implements the Service interface.
type AttemptService struct {
	attempts attemptdb.AttemptRepository
	bests    attemptdb.BestRepository
	users    userdb.Repository
	puzzles  puzzletypedb.Repository
	eventBus eventbus.EventBus
	parsers  parsers.ParserFactory
	logger   *slog.Logger
	metrics  metrics.AttemptMetrics
	tracer   trace.Tracer
	db       *bun.DB
	locks    *pairLocks
	opts     Options
	now      func() time.Time
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	attempts attemptdb.AttemptRepository,
	bests attemptdb.BestRepository,
	users userdb.Repository,
	puzzles puzzletypedb.Repository,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	metrics metrics.AttemptMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	opts Options,
) *AttemptService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttemptService{
		attempts: attempts,
		bests:    bests,
		users:    users,
		puzzles:  puzzles,
		eventBus: eventBus,
		parsers:  parsers.NewFactory(),
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		db:       db,
		locks:    newPairLocks(),
		opts:     opts.withDefaults(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// idb returns the pool as a bun.IDB, or a true nil when there is none.
func (s *AttemptService) idb() bun.IDB {
	if s.db == nil {
		return nil
	}
	return s.db
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *AttemptService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {

	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
		}
	}()

	s.logger.InfoContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), attr.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			}
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}

	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *AttemptService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {

	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})

	return result, err
}

// unwrap turns an operation result into the public (value, error) shape.
func unwrap[S any](result results.OperationResult[S, error], err error) (S, error) {
	var zero S
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	return *result.Success, nil
}
