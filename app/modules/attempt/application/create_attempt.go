package attemptservice

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	attemptdomain "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/domain"
	attemptevents "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/domain/events"
	attempttypes "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/domain/types"
	attemptdb "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/infrastructure/repositories"
	puzzletypedb "github.com/Black-And-White-Club/speedsolve/app/modules/puzzletype/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/speedsolve/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/speedsolve/pkg/observability/attr"
	"github.com/Black-And-White-Club/speedsolve/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CreateAttempt stores an attempt and rebuilds its pair's ledger before
// returning. The created event is published after commit.
func (s *AttemptService) CreateAttempt(ctx context.Context, req NewAttempt) (*CreateAttemptResult, error) {
	unlock := s.locks.lock(pairKey{req.UserID, req.PuzzleTypeID})
	defer unlock()

	created, err := unwrap(withTelemetry(s, ctx, "CreateAttempt", req.UserID.String(), func(ctx context.Context) (results.OperationResult[*CreateAttemptResult, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*CreateAttemptResult, error], error) {
			return s.createAttemptLogic(ctx, db, req)
		})
	}))
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordAttemptsCreated(ctx, 1)
	}
	s.publish(ctx, attemptevents.AttemptCreatedV1, &pairKey{req.UserID, req.PuzzleTypeID}, attemptevents.AttemptCreatedPayloadV1{
		Attempt: created.Attempt,
		Bests:   created.Bests,
	})
	return created, nil
}

func (s *AttemptService) createAttemptLogic(ctx context.Context, db bun.IDB, req NewAttempt) (results.OperationResult[*CreateAttemptResult, error], error) {
	if err := validateNewAttempt(req); err != nil {
		return results.FailureResult[*CreateAttemptResult, error](err), nil
	}
	if failure, err := s.checkPair(ctx, db, req.UserID, req.PuzzleTypeID); failure != nil || err != nil {
		if err != nil {
			return results.OperationResult[*CreateAttemptResult, error]{}, err
		}
		return results.FailureResult[*CreateAttemptResult, error](failure), nil
	}

	row := toRow(req)
	if err := s.attempts.Insert(ctx, db, &row); err != nil {
		return results.OperationResult[*CreateAttemptResult, error]{}, fmt.Errorf("failed to insert attempt: %w", err)
	}

	bests, history, err := s.rebuildPair(ctx, db, req.UserID, req.PuzzleTypeID)
	if err != nil {
		return results.OperationResult[*CreateAttemptResult, error]{}, err
	}

	// The stored attempt with averages over the history that ends at it.
	info := attempttypes.FromAttempt(row.ToDomain())
	if idx := slices.IndexFunc(history, func(a attemptdomain.Attempt) bool { return a.ID == row.ID }); idx >= 0 {
		info = attempttypes.FromWithAverages(attemptdomain.AttachAverages(history[idx:], 1)[0])
	}

	s.logger.InfoContext(ctx, "Attempt recorded",
		attr.ExtractCorrelationID(ctx),
		attr.AttemptID(row.ID),
		attr.UserID(req.UserID),
		attr.PuzzleTypeID(req.PuzzleTypeID),
		attr.Int("milliseconds", req.Milliseconds),
		attr.Bool("dnf", req.DNF),
	)

	return results.SuccessResult[*CreateAttemptResult, error](&CreateAttemptResult{
		Attempt: info,
		Bests:   attempttypes.FromBests(bests),
	}), nil
}

// BatchCreateAttempts stores every attempt in one transaction and rebuilds
// each affected pair once.
func (s *AttemptService) BatchCreateAttempts(ctx context.Context, reqs []NewAttempt) (int, error) {
	keys := make([]pairKey, 0, len(reqs))
	for _, r := range reqs {
		keys = append(keys, pairKey{r.UserID, r.PuzzleTypeID})
	}
	slices.SortFunc(keys, comparePairs)
	keys = slices.Compact(keys)

	unlock := s.locks.lockAll(keys)
	defer unlock()

	count, err := unwrap(withTelemetry(s, ctx, "BatchCreateAttempts", fmt.Sprintf("%d attempts", len(reqs)), func(ctx context.Context) (results.OperationResult[int, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[int, error], error) {
			return s.batchCreateLogic(ctx, db, reqs, keys)
		})
	}))
	if err != nil {
		return 0, err
	}

	if s.metrics != nil {
		s.metrics.RecordAttemptsCreated(ctx, count)
	}
	pairs := make([]attemptevents.PairV1, len(keys))
	for i, k := range keys {
		pairs[i] = attemptevents.PairV1{UserID: k.userID, PuzzleTypeID: k.puzzleTypeID}
	}
	s.publish(ctx, attemptevents.AttemptsBatchCreatedV1, nil, attemptevents.AttemptsBatchCreatedPayloadV1{
		Count: count,
		Pairs: pairs,
	})
	return count, nil
}

func (s *AttemptService) batchCreateLogic(ctx context.Context, db bun.IDB, reqs []NewAttempt, keys []pairKey) (results.OperationResult[int, error], error) {
	if len(reqs) == 0 {
		return results.FailureResult[int, error](ErrEmptyBatch), nil
	}

	for i, r := range reqs {
		if err := validateNewAttempt(r); err != nil {
			return results.FailureResult[int, error](fmt.Errorf("attempt %d: %w", i, err)), nil
		}
	}

	checkedUsers := make(map[uuid.UUID]bool)
	checkedPuzzles := make(map[uuid.UUID]bool)
	for _, k := range keys {
		if !checkedUsers[k.userID] {
			if failure, err := s.checkUser(ctx, db, k.userID); failure != nil || err != nil {
				if err != nil {
					return results.OperationResult[int, error]{}, err
				}
				return results.FailureResult[int, error](failure), nil
			}
			checkedUsers[k.userID] = true
		}
		if !checkedPuzzles[k.puzzleTypeID] {
			if failure, err := s.checkPuzzleType(ctx, db, k.puzzleTypeID); failure != nil || err != nil {
				if err != nil {
					return results.OperationResult[int, error]{}, err
				}
				return results.FailureResult[int, error](failure), nil
			}
			checkedPuzzles[k.puzzleTypeID] = true
		}
	}

	// Earlier requests get later creation stamps so that rows sharing a
	// performedAt keep their newest-first input order.
	stamp := s.now().UTC().Truncate(time.Microsecond)
	rows := make([]attemptdb.Attempt, len(reqs))
	for i, r := range reqs {
		rows[i] = toRow(r)
		rows[i].CreatedAt = stamp.Add(time.Duration(len(reqs)-1-i) * time.Microsecond)
	}
	inserted, err := s.attempts.InsertBatch(ctx, db, rows)
	if err != nil {
		return results.OperationResult[int, error]{}, fmt.Errorf("failed to insert attempts: %w", err)
	}

	for _, k := range keys {
		if _, _, err := s.rebuildPair(ctx, db, k.userID, k.puzzleTypeID); err != nil {
			return results.OperationResult[int, error]{}, err
		}
	}

	return results.SuccessResult[int, error](inserted), nil
}

func validateNewAttempt(req NewAttempt) error {
	switch {
	case req.UserID == uuid.Nil:
		return fmt.Errorf("%w: userId is required", ErrInvalidAttempt)
	case req.PuzzleTypeID == uuid.Nil:
		return fmt.Errorf("%w: puzzleTypeId is required", ErrInvalidAttempt)
	case req.Milliseconds < 0:
		return fmt.Errorf("%w: milliseconds must not be negative", ErrInvalidAttempt)
	case req.Penalty < 0:
		return fmt.Errorf("%w: penalty must not be negative", ErrInvalidAttempt)
	}
	return nil
}

func toRow(req NewAttempt) attemptdb.Attempt {
	row := attemptdb.Attempt{
		UserID:       req.UserID,
		PuzzleTypeID: req.PuzzleTypeID,
		Milliseconds: req.Milliseconds,
		DNF:          req.DNF,
		Penalty:      req.Penalty,
	}
	if req.PerformedAt != nil {
		row.PerformedAt = req.PerformedAt.UTC()
	}
	return row
}

// checkPair returns a domain failure for an unknown user or puzzle type.
func (s *AttemptService) checkPair(ctx context.Context, db bun.IDB, userID, puzzleTypeID uuid.UUID) (failure, err error) {
	if failure, err = s.checkUser(ctx, db, userID); failure != nil || err != nil {
		return failure, err
	}
	return s.checkPuzzleType(ctx, db, puzzleTypeID)
}

func (s *AttemptService) checkUser(ctx context.Context, db bun.IDB, userID uuid.UUID) (failure, err error) {
	if _, err := s.users.GetByID(ctx, db, userID); err != nil {
		if errors.Is(err, userdb.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrUserNotFound, userID), nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return nil, nil
}

func (s *AttemptService) checkPuzzleType(ctx context.Context, db bun.IDB, puzzleTypeID uuid.UUID) (failure, err error) {
	if _, err := s.puzzles.GetByID(ctx, db, puzzleTypeID); err != nil {
		if errors.Is(err, puzzletypedb.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrPuzzleTypeNotFound, puzzleTypeID), nil
		}
		return nil, fmt.Errorf("failed to get puzzle type: %w", err)
	}
	return nil, nil
}
