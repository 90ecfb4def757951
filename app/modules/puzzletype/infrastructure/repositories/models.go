package puzzletypedb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PuzzleType is a puzzle attempts are recorded against, e.g. "333" or "pyram".
type PuzzleType struct {
	bun.BaseModel `bun:"table:puzzle_types,alias:pt"`

	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Slug      string    `bun:"slug,unique,notnull" json:"slug"`
	Name      string    `bun:"name,notnull" json:"name"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

var _ bun.BeforeAppendModelHook = (*PuzzleType)(nil)

func (p *PuzzleType) BeforeAppendModel(_ context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		p.UpdatedAt = now
	case *bun.UpdateQuery:
		p.UpdatedAt = now
	}
	return nil
}

// Standard is the WCA event set seeded into a fresh database.
var Standard = []PuzzleType{
	{Slug: "222", Name: "2x2x2 Cube"},
	{Slug: "333", Name: "3x3x3 Cube"},
	{Slug: "444", Name: "4x4x4 Cube"},
	{Slug: "555", Name: "5x5x5 Cube"},
	{Slug: "666", Name: "6x6x6 Cube"},
	{Slug: "777", Name: "7x7x7 Cube"},
	{Slug: "333oh", Name: "3x3x3 One-Handed"},
	{Slug: "333bf", Name: "3x3x3 Blindfolded"},
	{Slug: "pyram", Name: "Pyraminx"},
	{Slug: "minx", Name: "Megaminx"},
	{Slug: "skewb", Name: "Skewb"},
	{Slug: "sq1", Name: "Square-1"},
	{Slug: "clock", Name: "Clock"},
}
