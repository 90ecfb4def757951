package userdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for user persistence.
type Repository interface {
	// GetByID returns ErrNotFound for unknown ids.
	GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*User, error)
	GetByName(ctx context.Context, db bun.IDB, name string) (*User, error)
	List(ctx context.Context, db bun.IDB) ([]User, error)
	// Upsert creates the user or refreshes the email of an existing name.
	Upsert(ctx context.Context, db bun.IDB, user *User) error
}
