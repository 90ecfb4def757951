package userdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*User, error) {
	return r.getOne(ctx, db, "u.id = ?", id)
}

func (r *Impl) GetByName(ctx context.Context, db bun.IDB, name string) (*User, error) {
	return r.getOne(ctx, db, "u.name = ?", name)
}

func (r *Impl) getOne(ctx context.Context, db bun.IDB, where string, arg any) (*User, error) {
	db = r.resolveDB(db)
	user := new(User)
	if err := db.NewSelect().Model(user).Where(where, arg).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *Impl) List(ctx context.Context, db bun.IDB) ([]User, error) {
	db = r.resolveDB(db)
	var users []User
	if err := db.NewSelect().Model(&users).OrderExpr("u.name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *Impl) Upsert(ctx context.Context, db bun.IDB, user *User) error {
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(user).
		On("CONFLICT (name) DO UPDATE").
		Set("email = EXCLUDED.email").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}
