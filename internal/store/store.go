// Package store is the key-indexed table abstraction over the family
// record table. Full scans are the only query mechanism the contract
// promises; callers that need filtering iterate, and anything smarter
// stays behind this interface.
package store

import (
	"context"

	"takaful/pkg/types"

	sq "github.com/Masterminds/squirrel"
)

type FamilyStore interface {
	// Family returns the record with the given id, or
	// types.ErrFamilyNotFound.
	Family(ctx context.Context, id int) (*types.FamilyRecord, error)

	// Families returns every row, ordered by id.
	Families(ctx context.Context) ([]*types.FamilyRecord, error)

	// MaxID returns the highest assigned id, 0 on an empty table. Ids are
	// never reused; callers assign max+1 under their own serialization.
	MaxID(ctx context.Context) (int, error)

	// Create inserts a new row. The caller has already assigned the id.
	Create(ctx context.Context, record *types.FamilyRecord) error

	// Update rewrites a full row by id.
	Update(ctx context.Context, record *types.FamilyRecord) error

	// UpdateFields applies cell-level writes, keyed by canonical field
	// name (see schema.go). Unknown field names are an error.
	UpdateFields(ctx context.Context, id int, fields map[string]any) error
}

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}
