package userdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// FakeRepository is a fake implementation of Repository for testing.
type FakeRepository struct {
	GetByIDFn   func(ctx context.Context, db bun.IDB, id uuid.UUID) (*User, error)
	GetByNameFn func(ctx context.Context, db bun.IDB, name string) (*User, error)
	ListFn      func(ctx context.Context, db bun.IDB) ([]User, error)
	UpsertFn    func(ctx context.Context, db bun.IDB, user *User) error
}

// GetByID reports every id as existing unless overridden.
func (f *FakeRepository) GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*User, error) {
	if f.GetByIDFn != nil {
		return f.GetByIDFn(ctx, db, id)
	}
	return &User{ID: id, Name: "fake"}, nil
}

func (f *FakeRepository) GetByName(ctx context.Context, db bun.IDB, name string) (*User, error) {
	if f.GetByNameFn != nil {
		return f.GetByNameFn(ctx, db, name)
	}
	return nil, ErrNotFound
}

func (f *FakeRepository) List(ctx context.Context, db bun.IDB) ([]User, error) {
	if f.ListFn != nil {
		return f.ListFn(ctx, db)
	}
	return nil, nil
}

func (f *FakeRepository) Upsert(ctx context.Context, db bun.IDB, user *User) error {
	if f.UpsertFn != nil {
		return f.UpsertFn(ctx, db, user)
	}
	return nil
}

var _ Repository = (*FakeRepository)(nil)
