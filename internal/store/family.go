package store

import (
	"context"
	"fmt"
	"time"

	"takaful/internal/utils"
	"takaful/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const familyTableName = "takaful.families"

var familyColumns = utils.StructTagValues(types.FamilyRecord{})

type FamilyRepository struct {
	pool *pgxpool.Pool
}

func NewFamilyRepository(pool *pgxpool.Pool) *FamilyRepository {
	return &FamilyRepository{pool: pool}
}

func (r *FamilyRepository) Family(ctx context.Context, id int) (*types.FamilyRecord, error) {

	query, args, err := psql().Select(familyColumns...).From(familyTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate family query: %w", err)
	}

	var record = new(types.FamilyRecord)
	err = pgxscan.Get(ctx, r.pool, record, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, err
	}

	if err != nil {
		return nil, types.ErrFamilyNotFound
	}

	return record, nil
}

func (r *FamilyRepository) Families(ctx context.Context) ([]*types.FamilyRecord, error) {

	query, args, err := psql().Select(familyColumns...).From(familyTableName).
		OrderBy("id asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate families query: %w", err)
	}

	var records = make([]*types.FamilyRecord, 0)
	if err := pgxscan.Select(ctx, r.pool, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select families: %w", err)
	}

	return records, nil
}

func (r *FamilyRepository) MaxID(ctx context.Context) (int, error) {

	query, _, err := psql().Select("coalesce(max(id), 0)").From(familyTableName).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate max id query: %w", err)
	}

	var maxID int
	if err := pgxscan.Get(ctx, r.pool, &maxID, query); err != nil {
		return 0, fmt.Errorf("failed to query max id: %w", err)
	}

	return maxID, nil
}

func (r *FamilyRepository) Create(ctx context.Context, record *types.FamilyRecord) error {

	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	recordMap := utils.StructToMap(record)

	query, args, err := psql().Insert(familyTableName).SetMap(recordMap).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert family query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create family")
}

func (r *FamilyRepository) Update(ctx context.Context, record *types.FamilyRecord) error {

	record.UpdatedAt = time.Now()

	recordMap := utils.StructToMap(record)
	delete(recordMap, "id")
	delete(recordMap, "created_at")

	query, args, err := psql().Update(familyTableName).SetMap(recordMap).
		Where(sq.Eq{"id": record.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update family query for family %d: %w", record.ID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update family")
}

func (r *FamilyRepository) UpdateFields(ctx context.Context, id int, fields map[string]any) error {

	if len(fields) == 0 {
		return nil
	}

	setMap := map[string]any{"updated_at": time.Now()}
	for field, value := range fields {
		column, ok := ColumnFor(field)
		if !ok {
			return fmt.Errorf("unknown family field %q", field)
		}
		setMap[column] = value
	}

	query, args, err := psql().Update(familyTableName).SetMap(setMap).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate field update query for family %d: %w", id, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update family fields: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrFamilyNotFound
	}

	return nil
}
