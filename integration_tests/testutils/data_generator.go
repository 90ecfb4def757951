package testutils

import (
	"context"
	"testing"
	"time"

	attemptservice "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/application"
	puzzletypedb "github.com/Black-And-White-Club/speedsolve/app/modules/puzzletype/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/speedsolve/app/modules/user/infrastructure/repositories"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TestDataGenerator provides methods to create test data for integration tests
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  uint64
}

// NewTestDataGenerator creates a new test data generator with optional seed
func NewTestDataGenerator(seed ...uint64) *TestDataGenerator {
	s := uint64(time.Now().UnixNano())
	if len(seed) > 0 {
		s = seed[0]
	}
	return &TestDataGenerator{faker: gofakeit.New(s), seed: s}
}

// Seed reports the seed so failures can be replayed.
func (g *TestDataGenerator) Seed() uint64 { return g.seed }

// InsertUser stores a user with a generated name.
func (g *TestDataGenerator) InsertUser(t *testing.T, ctx context.Context, db bun.IDB) *userdb.User {
	t.Helper()
	u := &userdb.User{Name: g.faker.Username() + "-" + g.faker.LetterN(6)}
	if err := userdb.NewRepository(db).Upsert(ctx, db, u); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return u
}

// InsertPuzzleType stores a puzzle type with a generated slug.
func (g *TestDataGenerator) InsertPuzzleType(t *testing.T, ctx context.Context, db bun.IDB) *puzzletypedb.PuzzleType {
	t.Helper()
	pt := &puzzletypedb.PuzzleType{Slug: g.faker.LetterN(8), Name: g.faker.Word()}
	if err := puzzletypedb.NewRepository(db).Upsert(ctx, db, pt); err != nil {
		t.Fatalf("insert puzzle type: %v", err)
	}
	return pt
}

// Attempts returns n attempts one minute apart ending at end, with roughly
// one DNF in twenty.
func (g *TestDataGenerator) Attempts(userID, puzzleTypeID uuid.UUID, n int, end time.Time) []attemptservice.NewAttempt {
	out := make([]attemptservice.NewAttempt, n)
	for i := range out {
		performed := end.Add(-time.Duration(n-1-i) * time.Minute)
		out[i] = attemptservice.NewAttempt{
			UserID:       userID,
			PuzzleTypeID: puzzleTypeID,
			Milliseconds: g.faker.Number(7000, 20000),
			DNF:          g.faker.Number(1, 20) == 1,
			PerformedAt:  &performed,
		}
	}
	return out
}
