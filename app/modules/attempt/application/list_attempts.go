package attemptservice

import (
	"context"
	"fmt"

	attemptdomain "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/domain"
	attempttypes "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/domain/types"
	attemptdb "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/infrastructure/repositories"
	"github.com/Black-And-White-Club/speedsolve/pkg/results"
	"github.com/uptrace/bun"
)

type attemptPage = attempttypes.Page[attempttypes.AttemptInfo]

// ListAttempts returns one page of attempts in canonical order, each with the
// rolling averages ending at it.
func (s *AttemptService) ListAttempts(ctx context.Context, req ListAttemptsRequest) (*attemptPage, error) {
	take := s.opts.DefaultPageSize
	if req.Take != nil {
		take = min(*req.Take, s.opts.MaxPageSize)
	}

	identifier := "all"
	if req.UserID != nil {
		identifier = req.UserID.String()
	}

	return unwrap(withTelemetry(s, ctx, "ListAttempts", identifier, func(ctx context.Context) (results.OperationResult[*attemptPage, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*attemptPage, error], error) {
			return s.listAttemptsLogic(ctx, db, attemptdb.Filter{UserID: req.UserID, PuzzleTypeID: req.PuzzleTypeID}, req.Skip, take)
		})
	}))
}

func (s *AttemptService) listAttemptsLogic(ctx context.Context, db bun.IDB, filter attemptdb.Filter, skip, take int) (results.OperationResult[*attemptPage, error], error) {
	if skip < 0 || take < 0 {
		return results.FailureResult[*attemptPage, error](ErrInvalidPage), nil
	}

	total, err := s.attempts.Count(ctx, db, filter)
	if err != nil {
		return results.OperationResult[*attemptPage, error]{}, fmt.Errorf("failed to count attempts: %w", err)
	}

	var fetched []attemptdb.Attempt
	if take > 0 {
		fetched, err = s.attempts.FetchOrdered(ctx, db, filter, skip, take+attemptdomain.Lookback)
		if err != nil {
			return results.OperationResult[*attemptPage, error]{}, fmt.Errorf("failed to fetch attempts: %w", err)
		}
	}

	withAverages := attemptdomain.AttachAverages(attemptdb.AttemptsToDomain(fetched), take)
	items := make([]attempttypes.AttemptInfo, len(withAverages))
	for i, a := range withAverages {
		items[i] = attempttypes.FromWithAverages(a)
	}

	page := attempttypes.NewPage(items, total, skip, take)
	return results.SuccessResult[*attemptPage, error](&page), nil
}
