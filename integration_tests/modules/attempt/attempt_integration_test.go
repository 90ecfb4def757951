//go:build integration

package attempt_integration_tests

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	attemptservice "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/application"
	attemptdomain "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/domain"
	attemptevents "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/domain/events"
	attemptqueue "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/infrastructure/queue"
	attemptdb "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/infrastructure/repositories"
	puzzletypedb "github.com/Black-And-White-Club/speedsolve/app/modules/puzzletype/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/speedsolve/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/speedsolve/integration_tests/testutils"
	"github.com/Black-And-White-Club/speedsolve/pkg/observability/metrics"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

// newService builds a service with its own in-process lock table, the way
// a second replica would.
func newService() *attemptservice.AttemptService {
	db := testEnv.DB
	return attemptservice.NewAttemptService(
		attemptdb.NewAttemptRepository(db),
		attemptdb.NewBestRepository(db),
		userdb.NewRepository(db),
		puzzletypedb.NewRepository(db),
		testEnv.EventBus,
		testEnv.Logger,
		metrics.NewNoop(),
		noop.NewTracerProvider().Tracer("integration"),
		db,
		attemptservice.Options{},
	)
}

// replayedLedger rebuilds the ledger from the stored history, independent of
// what the service persisted.
func replayedLedger(t *testing.T, ctx context.Context, userID, puzzleTypeID uuid.UUID) []attemptdomain.BestRecord {
	t.Helper()
	rows, err := attemptdb.NewAttemptRepository(testEnv.DB).FetchAll(ctx, testEnv.DB, userID, puzzleTypeID)
	require.NoError(t, err)
	return attemptdomain.BuildLedger(attemptdb.AttemptsToDomain(rows))
}

func storedLedger(t *testing.T, ctx context.Context, userID, puzzleTypeID uuid.UUID) []attemptdomain.BestRecord {
	t.Helper()
	rows, err := attemptdb.NewBestRepository(testEnv.DB).GetLedger(ctx, testEnv.DB, userID, puzzleTypeID)
	require.NoError(t, err)
	out := make([]attemptdomain.BestRecord, len(rows))
	for i, r := range rows {
		out[i] = r.ToDomain()
	}
	return out
}

var ledgerOpts = cmp.Options{
	cmpopts.EquateEmpty(),
	cmpopts.EquateApproxTime(time.Millisecond),
}

func TestCreateAttempt_LedgerMatchesReplay(t *testing.T) {
	testEnv.Reset(t)
	ctx := testEnv.Ctx
	gen := testutils.NewTestDataGenerator()
	user := gen.InsertUser(t, ctx, testEnv.DB)
	puzzle := gen.InsertPuzzleType(t, ctx, testEnv.DB)
	svc := newService()

	// Out-of-order performedAt values exercise backdated inserts.
	attempts := gen.Attempts(user.ID, puzzle.ID, 30, time.Now().UTC())
	for i := len(attempts) - 1; i >= 0; i -= 2 {
		_, err := svc.CreateAttempt(ctx, attempts[i])
		require.NoError(t, err, "seed %d", gen.Seed())
	}
	for i := len(attempts) - 2; i >= 0; i -= 2 {
		_, err := svc.CreateAttempt(ctx, attempts[i])
		require.NoError(t, err, "seed %d", gen.Seed())
	}

	want := replayedLedger(t, ctx, user.ID, puzzle.ID)
	got := storedLedger(t, ctx, user.ID, puzzle.ID)
	if diff := cmp.Diff(want, got, ledgerOpts); diff != "" {
		t.Fatalf("ledger mismatch (seed %d) (-want +got):\n%s", gen.Seed(), diff)
	}

	bests, err := svc.CurrentBests(ctx, user.ID, puzzle.ID)
	require.NoError(t, err)
	assert.NotNil(t, bests.Ao5)
	assert.NotNil(t, bests.Ao12)
	assert.Nil(t, bests.Ao100)
}

func TestCreateAttempt_ConcurrentReplicas(t *testing.T) {
	testEnv.Reset(t)
	ctx := testEnv.Ctx
	gen := testutils.NewTestDataGenerator()
	user := gen.InsertUser(t, ctx, testEnv.DB)
	puzzle := gen.InsertPuzzleType(t, ctx, testEnv.DB)

	replicas := []*attemptservice.AttemptService{newService(), newService(), newService()}
	attempts := gen.Attempts(user.ID, puzzle.ID, 24, time.Now().UTC())

	var wg sync.WaitGroup
	errs := make(chan error, len(attempts))
	for i, a := range attempts {
		wg.Add(1)
		go func(svc *attemptservice.AttemptService, a attemptservice.NewAttempt) {
			defer wg.Done()
			if _, err := svc.CreateAttempt(ctx, a); err != nil {
				errs <- err
			}
		}(replicas[i%len(replicas)], a)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	want := replayedLedger(t, ctx, user.ID, puzzle.ID)
	got := storedLedger(t, ctx, user.ID, puzzle.ID)
	if diff := cmp.Diff(want, got, ledgerOpts); diff != "" {
		t.Fatalf("ledger mismatch after concurrent writes (seed %d) (-want +got):\n%s", gen.Seed(), diff)
	}
}

func TestCreateAttempt_PublishesOverNATS(t *testing.T) {
	testEnv.Reset(t)
	ctx, cancel := context.WithTimeout(testEnv.Ctx, 20*time.Second)
	defer cancel()
	gen := testutils.NewTestDataGenerator()
	user := gen.InsertUser(t, ctx, testEnv.DB)
	puzzle := gen.InsertPuzzleType(t, ctx, testEnv.DB)

	messages, err := testEnv.EventBus.Subscribe(ctx, attemptevents.AttemptCreatedV1)
	require.NoError(t, err)

	res, err := newService().CreateAttempt(ctx, gen.Attempts(user.ID, puzzle.ID, 1, time.Now().UTC())[0])
	require.NoError(t, err)

	for {
		select {
		case <-ctx.Done():
			t.Fatal("timed out waiting for attempt.created.v1")
		case msg := <-messages:
			msg.Ack()
			var payload attemptevents.AttemptCreatedPayloadV1
			require.NoError(t, json.Unmarshal(msg.Payload, &payload))
			if payload.Attempt.ID != res.Attempt.ID {
				continue
			}
			assert.Equal(t, user.ID, payload.Attempt.UserID)
			return
		}
	}
}

func TestRebuildAll_ThroughRiverQueue(t *testing.T) {
	testEnv.Reset(t)
	ctx, cancel := context.WithTimeout(testEnv.Ctx, 60*time.Second)
	defer cancel()
	gen := testutils.NewTestDataGenerator()
	svc := newService()

	type pair struct{ user, puzzle uuid.UUID }
	var pairs []pair
	for range 3 {
		user := gen.InsertUser(t, ctx, testEnv.DB)
		puzzle := gen.InsertPuzzleType(t, ctx, testEnv.DB)
		_, err := svc.BatchCreateAttempts(ctx, gen.Attempts(user.ID, puzzle.ID, 15, time.Now().UTC()))
		require.NoError(t, err)
		pairs = append(pairs, pair{user.ID, puzzle.ID})
	}

	// Wipe the ledgers so only the queued rebuilds can restore them.
	_, err := testEnv.DB.NewDelete().Model((*attemptdb.BestRecord)(nil)).Where("1 = 1").Exec(ctx)
	require.NoError(t, err)

	queue, err := attemptqueue.NewService(ctx,
		attemptqueue.Options{DSN: testEnv.Config.Storage.DSN, MaxWorkers: 2},
		svc, attemptdb.NewAttemptRepository(testEnv.DB), testEnv.DB, testEnv.Logger, metrics.NewNoop(), nil)
	require.NoError(t, err)

	n, err := queue.EnqueueRebuildAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(pairs), n)

	require.NoError(t, queue.Start(ctx))
	t.Cleanup(func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		_ = queue.Stop(stopCtx)
	})

	require.Eventually(t, func() bool {
		pending, err := queue.PendingJobs(ctx)
		return err == nil && pending == 0
	}, 30*time.Second, 200*time.Millisecond)

	for _, p := range pairs {
		want := replayedLedger(t, ctx, p.user, p.puzzle)
		got := storedLedger(t, ctx, p.user, p.puzzle)
		require.NotEmpty(t, got)
		if diff := cmp.Diff(want, got, ledgerOpts); diff != "" {
			t.Errorf("ledger mismatch for %v (-want +got):\n%s", p, diff)
		}
	}
}
