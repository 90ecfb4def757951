package attemptqueue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	attemptservice "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/application"
	attempttypes "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/domain/types"
	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type FakeRebuilder struct {
	RebuildLedgerFunc func(ctx context.Context, userID, puzzleTypeID uuid.UUID) (*attempttypes.BestsInfo, error)
	calls             int
}

func (f *FakeRebuilder) RebuildLedger(ctx context.Context, userID, puzzleTypeID uuid.UUID) (*attempttypes.BestsInfo, error) {
	f.calls++
	if f.RebuildLedgerFunc != nil {
		return f.RebuildLedgerFunc(ctx, userID, puzzleTypeID)
	}
	return &attempttypes.BestsInfo{}, nil
}

func newJob(args LedgerRebuildJob) *river.Job[LedgerRebuildJob] {
	return &river.Job[LedgerRebuildJob]{
		JobRow: &rivertype.JobRow{ID: 42, Attempt: 1, Kind: args.Kind()},
		Args:   args,
	}
}

func TestLedgerRebuildWorker_Work(t *testing.T) {
	user, puzzle := uuid.New(), uuid.New()

	tests := []struct {
		name       string
		rebuildErr error
		wantErr    bool
		wantCancel bool
	}{
		{name: "success"},
		{
			name:       "missing user cancels",
			rebuildErr: fmt.Errorf("%w: %s", attemptservice.ErrUserNotFound, user),
			wantErr:    true,
			wantCancel: true,
		},
		{
			name:       "missing puzzle type cancels",
			rebuildErr: attemptservice.ErrPuzzleTypeNotFound,
			wantErr:    true,
			wantCancel: true,
		},
		{
			name:       "infrastructure error retries",
			rebuildErr: errors.New("connection reset"),
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rebuilder := &FakeRebuilder{
				RebuildLedgerFunc: func(ctx context.Context, userID, puzzleTypeID uuid.UUID) (*attempttypes.BestsInfo, error) {
					assert.Equal(t, user, userID)
					assert.Equal(t, puzzle, puzzleTypeID)
					if tt.rebuildErr != nil {
						return nil, tt.rebuildErr
					}
					return &attempttypes.BestsInfo{Single: &attempttypes.BestInfo{Milliseconds: 9000}}, nil
				},
			}
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			worker := NewLedgerRebuildWorker(rebuilder, logger, noop.NewTracerProvider().Tracer("test"))

			err := worker.Work(context.Background(), newJob(LedgerRebuildJob{UserID: user, PuzzleTypeID: puzzle}))
			assert.Equal(t, 1, rebuilder.calls)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.rebuildErr)

			var cancelErr *rivertype.JobCancelError
			assert.Equal(t, tt.wantCancel, errors.As(err, &cancelErr))
		})
	}
}

func TestLedgerRebuildJob_InsertOpts(t *testing.T) {
	job := LedgerRebuildJob{UserID: uuid.New(), PuzzleTypeID: uuid.New()}
	opts := job.InsertOpts()

	assert.Equal(t, "ledger_rebuild", job.Kind())
	assert.Equal(t, QueueLedgers, opts.Queue)
	assert.True(t, opts.UniqueOpts.ByArgs)
}
