package attemptservice

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Black-And-White-Club/speedsolve/app/eventbus"
	attemptdomain "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/domain"
	attemptdb "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/infrastructure/repositories"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Attempt Repo
// ------------------------

// FakeAttemptRepo keeps attempts in memory in canonical order. Any XxxFunc
// set overrides the in-memory behaviour.
type FakeAttemptRepo struct {
	mu    sync.Mutex
	rows  []attemptdb.Attempt
	trace []string
	clock time.Time

	FetchOrderedFunc func(ctx context.Context, db bun.IDB, filter attemptdb.Filter, skip, take int) ([]attemptdb.Attempt, error)
	FetchAllFunc     func(ctx context.Context, db bun.IDB, userID, puzzleTypeID uuid.UUID) ([]attemptdb.Attempt, error)
	CountFunc        func(ctx context.Context, db bun.IDB, filter attemptdb.Filter) (int, error)
	InsertFunc       func(ctx context.Context, db bun.IDB, attempt *attemptdb.Attempt) error
	InsertBatchFunc  func(ctx context.Context, db bun.IDB, attempts []attemptdb.Attempt) (int, error)
	ListPairsFunc    func(ctx context.Context, db bun.IDB) ([]attemptdb.Pair, error)
}

func NewFakeAttemptRepo() *FakeAttemptRepo {
	return &FakeAttemptRepo{
		trace: []string{},
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *FakeAttemptRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeAttemptRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.trace)
}

// stamp mimics the model insert hook.
func (f *FakeAttemptRepo) stamp(a *attemptdb.Attempt) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		f.clock = f.clock.Add(time.Millisecond)
		a.CreatedAt = f.clock
	}
	if a.PerformedAt.IsZero() {
		a.PerformedAt = a.CreatedAt
	}
}

func (f *FakeAttemptRepo) matching(filter attemptdb.Filter) []attemptdb.Attempt {
	var out []attemptdb.Attempt
	for _, r := range f.rows {
		if filter.UserID != nil && r.UserID != *filter.UserID {
			continue
		}
		if filter.PuzzleTypeID != nil && r.PuzzleTypeID != *filter.PuzzleTypeID {
			continue
		}
		out = append(out, r)
	}
	slices.SortStableFunc(out, func(a, b attemptdb.Attempt) int {
		if c := b.PerformedAt.Compare(a.PerformedAt); c != 0 {
			return c
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID.String(), a.ID.String())
	})
	return out
}

func (f *FakeAttemptRepo) FetchOrdered(ctx context.Context, db bun.IDB, filter attemptdb.Filter, skip, take int) ([]attemptdb.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FetchOrdered")
	if f.FetchOrderedFunc != nil {
		return f.FetchOrderedFunc(ctx, db, filter, skip, take)
	}
	rows := f.matching(filter)
	if skip >= len(rows) {
		return nil, nil
	}
	return rows[skip:min(skip+take, len(rows))], nil
}

func (f *FakeAttemptRepo) FetchAll(ctx context.Context, db bun.IDB, userID, puzzleTypeID uuid.UUID) ([]attemptdb.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FetchAll")
	if f.FetchAllFunc != nil {
		return f.FetchAllFunc(ctx, db, userID, puzzleTypeID)
	}
	return f.matching(attemptdb.Filter{UserID: &userID, PuzzleTypeID: &puzzleTypeID}), nil
}

func (f *FakeAttemptRepo) Count(ctx context.Context, db bun.IDB, filter attemptdb.Filter) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Count")
	if f.CountFunc != nil {
		return f.CountFunc(ctx, db, filter)
	}
	return len(f.matching(filter)), nil
}

func (f *FakeAttemptRepo) Insert(ctx context.Context, db bun.IDB, attempt *attemptdb.Attempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Insert")
	if f.InsertFunc != nil {
		return f.InsertFunc(ctx, db, attempt)
	}
	f.stamp(attempt)
	f.rows = append(f.rows, *attempt)
	return nil
}

func (f *FakeAttemptRepo) InsertBatch(ctx context.Context, db bun.IDB, attempts []attemptdb.Attempt) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("InsertBatch")
	if f.InsertBatchFunc != nil {
		return f.InsertBatchFunc(ctx, db, attempts)
	}
	for i := range attempts {
		f.stamp(&attempts[i])
		f.rows = append(f.rows, attempts[i])
	}
	return len(attempts), nil
}

func (f *FakeAttemptRepo) ListPairs(ctx context.Context, db bun.IDB) ([]attemptdb.Pair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListPairs")
	if f.ListPairsFunc != nil {
		return f.ListPairsFunc(ctx, db)
	}
	seen := map[attemptdb.Pair]bool{}
	var out []attemptdb.Pair
	for _, r := range f.rows {
		p := attemptdb.Pair{UserID: r.UserID, PuzzleTypeID: r.PuzzleTypeID}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out, nil
}

var _ attemptdb.AttemptRepository = (*FakeAttemptRepo)(nil)

// ------------------------
// Fake Best Repo
// ------------------------

type FakeBestRepo struct {
	mu      sync.Mutex
	ledgers map[pairKey][]attemptdb.BestRecord
	trace   []string

	LockPairFunc         func(ctx context.Context, db bun.IDB, userID, puzzleTypeID uuid.UUID) error
	ReplaceLedgerFunc    func(ctx context.Context, db bun.IDB, userID, puzzleTypeID uuid.UUID, ledger []attemptdomain.BestRecord) error
	LatestByCategoryFunc func(ctx context.Context, db bun.IDB, userID, puzzleTypeID uuid.UUID, kind attemptdomain.AverageKind) (*attemptdb.BestRecord, error)
	GetLedgerFunc        func(ctx context.Context, db bun.IDB, userID, puzzleTypeID uuid.UUID) ([]attemptdb.BestRecord, error)
}

func NewFakeBestRepo() *FakeBestRepo {
	return &FakeBestRepo{
		ledgers: map[pairKey][]attemptdb.BestRecord{},
		trace:   []string{},
	}
}

func (f *FakeBestRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeBestRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.trace)
}

func (f *FakeBestRepo) LockPair(ctx context.Context, db bun.IDB, userID, puzzleTypeID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("LockPair")
	if f.LockPairFunc != nil {
		return f.LockPairFunc(ctx, db, userID, puzzleTypeID)
	}
	return nil
}

func (f *FakeBestRepo) ReplaceLedger(ctx context.Context, db bun.IDB, userID, puzzleTypeID uuid.UUID, ledger []attemptdomain.BestRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ReplaceLedger")
	if f.ReplaceLedgerFunc != nil {
		return f.ReplaceLedgerFunc(ctx, db, userID, puzzleTypeID, ledger)
	}
	rows := make([]attemptdb.BestRecord, len(ledger))
	for i, r := range ledger {
		rows[i] = attemptdb.BestRecord{
			ID:               uuid.New(),
			UserID:           userID,
			PuzzleTypeID:     puzzleTypeID,
			AttemptID:        r.AttemptID,
			Category:         string(r.Category),
			Milliseconds:     r.Milliseconds,
			Sequence:         i,
			PerformedAt:      r.PerformedAt,
			AttemptCreatedAt: r.AttemptCreatedAt,
		}
	}
	f.ledgers[pairKey{userID, puzzleTypeID}] = rows
	return nil
}

func (f *FakeBestRepo) LatestByCategory(ctx context.Context, db bun.IDB, userID, puzzleTypeID uuid.UUID, kind attemptdomain.AverageKind) (*attemptdb.BestRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("LatestByCategory")
	if f.LatestByCategoryFunc != nil {
		return f.LatestByCategoryFunc(ctx, db, userID, puzzleTypeID, kind)
	}
	var latest *attemptdb.BestRecord
	for _, r := range f.ledgers[pairKey{userID, puzzleTypeID}] {
		if r.Category != string(kind) {
			continue
		}
		if latest == nil || !r.PerformedAt.Before(latest.PerformedAt) {
			rec := r
			latest = &rec
		}
	}
	if latest == nil {
		return nil, attemptdb.ErrNotFound
	}
	return latest, nil
}

func (f *FakeBestRepo) GetLedger(ctx context.Context, db bun.IDB, userID, puzzleTypeID uuid.UUID) ([]attemptdb.BestRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetLedger")
	if f.GetLedgerFunc != nil {
		return f.GetLedgerFunc(ctx, db, userID, puzzleTypeID)
	}
	return slices.Clone(f.ledgers[pairKey{userID, puzzleTypeID}]), nil
}

var _ attemptdb.BestRepository = (*FakeBestRepo)(nil)

// ------------------------
// Fake Event Bus
// ------------------------

type publishedMessage struct {
	Topic string
	Msg   *message.Message
}

type FakeEventBus struct {
	mu        sync.Mutex
	published []publishedMessage

	PublishFunc func(topic string, messages ...*message.Message) error
}

func (f *FakeEventBus) Publish(topic string, messages ...*message.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishFunc != nil {
		return f.PublishFunc(topic, messages...)
	}
	for _, m := range messages {
		f.published = append(f.published, publishedMessage{Topic: topic, Msg: m})
	}
	return nil
}

func (f *FakeEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch := make(chan *message.Message)
	close(ch)
	return ch, nil
}

func (f *FakeEventBus) Close() error { return nil }

func (f *FakeEventBus) Published() []publishedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.published)
}

var _ eventbus.EventBus = (*FakeEventBus)(nil)
