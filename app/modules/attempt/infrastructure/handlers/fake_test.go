package attempthandlers

import (
	"context"
	"io"

	attemptservice "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/application"
	attempttypes "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/domain/types"
	"github.com/google/uuid"
)

// ------------------------
// Fake Service
// ------------------------

type FakeService struct {
	ListAttemptsFunc        func(ctx context.Context, req attemptservice.ListAttemptsRequest) (*attempttypes.Page[attempttypes.AttemptInfo], error)
	CreateAttemptFunc       func(ctx context.Context, req attemptservice.NewAttempt) (*attemptservice.CreateAttemptResult, error)
	BatchCreateAttemptsFunc func(ctx context.Context, reqs []attemptservice.NewAttempt) (int, error)
	ImportAttemptsFunc      func(ctx context.Context, userID, puzzleTypeID uuid.UUID, filename string, r io.Reader) (int, error)
	CurrentBestsFunc        func(ctx context.Context, userID, puzzleTypeID uuid.UUID) (*attempttypes.BestsInfo, error)
	RebuildLedgerFunc       func(ctx context.Context, userID, puzzleTypeID uuid.UUID) (*attempttypes.BestsInfo, error)
	RebuildAllFunc          func(ctx context.Context) (*attemptservice.RebuildSummary, error)
	LedgerChartFunc         func(ctx context.Context, userID, puzzleTypeID uuid.UUID) ([]byte, error)
}

func (f *FakeService) ListAttempts(ctx context.Context, req attemptservice.ListAttemptsRequest) (*attempttypes.Page[attempttypes.AttemptInfo], error) {
	if f.ListAttemptsFunc != nil {
		return f.ListAttemptsFunc(ctx, req)
	}
	page := attempttypes.NewPage[attempttypes.AttemptInfo](nil, 0, req.Skip, 10)
	return &page, nil
}

func (f *FakeService) CreateAttempt(ctx context.Context, req attemptservice.NewAttempt) (*attemptservice.CreateAttemptResult, error) {
	if f.CreateAttemptFunc != nil {
		return f.CreateAttemptFunc(ctx, req)
	}
	return &attemptservice.CreateAttemptResult{}, nil
}

func (f *FakeService) BatchCreateAttempts(ctx context.Context, reqs []attemptservice.NewAttempt) (int, error) {
	if f.BatchCreateAttemptsFunc != nil {
		return f.BatchCreateAttemptsFunc(ctx, reqs)
	}
	return len(reqs), nil
}

func (f *FakeService) ImportAttempts(ctx context.Context, userID, puzzleTypeID uuid.UUID, filename string, r io.Reader) (int, error) {
	if f.ImportAttemptsFunc != nil {
		return f.ImportAttemptsFunc(ctx, userID, puzzleTypeID, filename, r)
	}
	return 0, nil
}

func (f *FakeService) CurrentBests(ctx context.Context, userID, puzzleTypeID uuid.UUID) (*attempttypes.BestsInfo, error) {
	if f.CurrentBestsFunc != nil {
		return f.CurrentBestsFunc(ctx, userID, puzzleTypeID)
	}
	return &attempttypes.BestsInfo{}, nil
}

func (f *FakeService) RebuildLedger(ctx context.Context, userID, puzzleTypeID uuid.UUID) (*attempttypes.BestsInfo, error) {
	if f.RebuildLedgerFunc != nil {
		return f.RebuildLedgerFunc(ctx, userID, puzzleTypeID)
	}
	return &attempttypes.BestsInfo{}, nil
}

func (f *FakeService) RebuildAll(ctx context.Context) (*attemptservice.RebuildSummary, error) {
	if f.RebuildAllFunc != nil {
		return f.RebuildAllFunc(ctx)
	}
	return &attemptservice.RebuildSummary{}, nil
}

func (f *FakeService) LedgerChart(ctx context.Context, userID, puzzleTypeID uuid.UUID) ([]byte, error) {
	if f.LedgerChartFunc != nil {
		return f.LedgerChartFunc(ctx, userID, puzzleTypeID)
	}
	return []byte("\x89PNG"), nil
}

var _ attemptservice.Service = (*FakeService)(nil)

// ------------------------
// Fake Enqueuer
// ------------------------

type FakeEnqueuer struct {
	EnqueueRebuildAllFunc func(ctx context.Context) (int, error)
}

func (f *FakeEnqueuer) EnqueueRebuildAll(ctx context.Context) (int, error) {
	if f.EnqueueRebuildAllFunc != nil {
		return f.EnqueueRebuildAllFunc(ctx)
	}
	return 0, nil
}
