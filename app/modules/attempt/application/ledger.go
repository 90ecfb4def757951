package attemptservice

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	attemptdomain "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/domain"
	attemptevents "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/domain/events"
	attempttypes "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/domain/types"
	attemptdb "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/infrastructure/repositories"
	"github.com/Black-And-White-Club/speedsolve/pkg/observability/attr"
	"github.com/Black-And-White-Club/speedsolve/pkg/results"
	"github.com/google/uuid"
	"github.com/remeh/sizedwaitgroup"
	"github.com/uptrace/bun"
)

// rebuildPair replays the full history of a pair and swaps in the new
// ledger. Callers hold the pair lock and pass the transaction.
func (s *AttemptService) rebuildPair(ctx context.Context, db bun.IDB, userID, puzzleTypeID uuid.UUID) (attemptdomain.CurrentBests, []attemptdomain.Attempt, error) {
	// Lock before reading so a concurrent replica cannot replay a stale history.
	if err := s.bests.LockPair(ctx, db, userID, puzzleTypeID); err != nil {
		return attemptdomain.CurrentBests{}, nil, fmt.Errorf("failed to lock ledger: %w", err)
	}

	rows, err := s.attempts.FetchAll(ctx, db, userID, puzzleTypeID)
	if err != nil {
		return attemptdomain.CurrentBests{}, nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	history := attemptdb.AttemptsToDomain(rows)

	ledger := attemptdomain.BuildLedger(history)
	if err := s.bests.ReplaceLedger(ctx, db, userID, puzzleTypeID, ledger); err != nil {
		return attemptdomain.CurrentBests{}, nil, fmt.Errorf("failed to replace ledger: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordLedgerSize(ctx, len(ledger))
	}

	bests, err := s.loadCurrentBests(ctx, db, userID, puzzleTypeID)
	if err != nil {
		return attemptdomain.CurrentBests{}, nil, err
	}

	s.logger.DebugContext(ctx, "Ledger rebuilt",
		attr.ExtractCorrelationID(ctx),
		attr.UserID(userID),
		attr.PuzzleTypeID(puzzleTypeID),
		attr.Int("attempts", len(history)),
		attr.Int("records", len(ledger)),
	)
	return bests, history, nil
}

func (s *AttemptService) loadCurrentBests(ctx context.Context, db bun.IDB, userID, puzzleTypeID uuid.UUID) (attemptdomain.CurrentBests, error) {
	var bests attemptdomain.CurrentBests
	for _, kind := range attemptdomain.Kinds {
		rec, err := s.bests.LatestByCategory(ctx, db, userID, puzzleTypeID, kind)
		if err != nil {
			if errors.Is(err, attemptdb.ErrNotFound) {
				continue
			}
			return bests, fmt.Errorf("failed to load %s best: %w", kind, err)
		}
		d := rec.ToDomain()
		bests.Set(kind, &d)
	}
	return bests, nil
}

// CurrentBests returns the latest record per category. Categories without a
// record are nil, which is not an error.
func (s *AttemptService) CurrentBests(ctx context.Context, userID, puzzleTypeID uuid.UUID) (*attempttypes.BestsInfo, error) {
	return unwrap(withTelemetry(s, ctx, "CurrentBests", userID.String(), func(ctx context.Context) (results.OperationResult[*attempttypes.BestsInfo, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*attempttypes.BestsInfo, error], error) {
			bests, err := s.loadCurrentBests(ctx, db, userID, puzzleTypeID)
			if err != nil {
				return results.OperationResult[*attempttypes.BestsInfo, error]{}, err
			}
			info := attempttypes.FromBests(bests)
			return results.SuccessResult[*attempttypes.BestsInfo, error](&info), nil
		})
	}))
}

// RebuildLedger regenerates a pair's ledger from its full history.
func (s *AttemptService) RebuildLedger(ctx context.Context, userID, puzzleTypeID uuid.UUID) (*attempttypes.BestsInfo, error) {
	unlock := s.locks.lock(pairKey{userID, puzzleTypeID})
	defer unlock()

	info, err := unwrap(withTelemetry(s, ctx, "RebuildLedger", userID.String(), func(ctx context.Context) (results.OperationResult[*attempttypes.BestsInfo, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*attempttypes.BestsInfo, error], error) {
			if failure, err := s.checkPair(ctx, db, userID, puzzleTypeID); failure != nil || err != nil {
				if err != nil {
					return results.OperationResult[*attempttypes.BestsInfo, error]{}, err
				}
				return results.FailureResult[*attempttypes.BestsInfo, error](failure), nil
			}
			bests, _, err := s.rebuildPair(ctx, db, userID, puzzleTypeID)
			if err != nil {
				return results.OperationResult[*attempttypes.BestsInfo, error]{}, err
			}
			info := attempttypes.FromBests(bests)
			return results.SuccessResult[*attempttypes.BestsInfo, error](&info), nil
		})
	}))
	if err != nil {
		return nil, err
	}

	s.publish(ctx, attemptevents.LedgerRebuiltV1, &pairKey{userID, puzzleTypeID}, attemptevents.LedgerRebuiltPayloadV1{
		Pair:  attemptevents.PairV1{UserID: userID, PuzzleTypeID: puzzleTypeID},
		Bests: *info,
	})
	return info, nil
}

// RebuildAll rebuilds every pair that has attempts, a bounded number at a
// time. A failing pair is logged and counted; the rest still run.
func (s *AttemptService) RebuildAll(ctx context.Context) (*RebuildSummary, error) {
	return unwrap(withTelemetry(s, ctx, "RebuildAll", "all", func(ctx context.Context) (results.OperationResult[*RebuildSummary, error], error) {
		start := time.Now()
		pairs, err := s.attempts.ListPairs(ctx, s.idb())
		if err != nil {
			return results.OperationResult[*RebuildSummary, error]{}, fmt.Errorf("failed to list pairs: %w", err)
		}

		var failed atomic.Int64
		swg := sizedwaitgroup.New(s.opts.RebuildConcurrency)
		for _, p := range pairs {
			if ctx.Err() != nil {
				break
			}
			swg.Add()
			go func(p attemptdb.Pair) {
				defer swg.Done()
				if _, err := s.RebuildLedger(ctx, p.UserID, p.PuzzleTypeID); err != nil {
					failed.Add(1)
					s.logger.ErrorContext(ctx, "Pair rebuild failed",
						attr.ExtractCorrelationID(ctx),
						attr.UserID(p.UserID),
						attr.PuzzleTypeID(p.PuzzleTypeID),
						attr.Error(err),
					)
				}
			}(p)
		}
		swg.Wait()

		if err := ctx.Err(); err != nil {
			return results.OperationResult[*RebuildSummary, error]{}, err
		}

		return results.SuccessResult[*RebuildSummary, error](&RebuildSummary{
			Pairs:    len(pairs),
			Failed:   int(failed.Load()),
			Duration: time.Since(start),
		}), nil
	}))
}

// LedgerChart renders the pair's full ledger as a PNG.
func (s *AttemptService) LedgerChart(ctx context.Context, userID, puzzleTypeID uuid.UUID) ([]byte, error) {
	return unwrap(withTelemetry(s, ctx, "LedgerChart", userID.String(), func(ctx context.Context) (results.OperationResult[[]byte, error], error) {
		rows, err := s.bests.GetLedger(ctx, s.idb(), userID, puzzleTypeID)
		if err != nil {
			return results.OperationResult[[]byte, error]{}, fmt.Errorf("failed to get ledger: %w", err)
		}
		ledger := make([]attemptdomain.BestRecord, len(rows))
		for i, r := range rows {
			ledger[i] = r.ToDomain()
		}

		png, err := GenerateLedgerChart(ledger, *s.opts.Palette)
		if err != nil {
			return results.OperationResult[[]byte, error]{}, fmt.Errorf("failed to render chart: %w", err)
		}
		return results.SuccessResult[[]byte, error](png), nil
	}))
}
