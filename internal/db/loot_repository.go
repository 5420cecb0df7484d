package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/udisondev/mmogate/internal/model"
)

// LootRepository loads the drop reference table.
type LootRepository struct {
	pool *pgxpool.Pool
}

// NewLootRepository creates a LootRepository.
func NewLootRepository(pool *pgxpool.Pool) *LootRepository {
	return &LootRepository{pool: pool}
}

// LoadAll returns every loot entry.
func (r *LootRepository) LoadAll(ctx context.Context) ([]model.LootEntry, error) {
	rows, err := r.pool.Query(ctx, stmtGetLoot)
	if err != nil {
		return nil, fmt.Errorf("querying loot: %w", err)
	}
	defer rows.Close()

	var entries []model.LootEntry
	for rows.Next() {
		var e model.LootEntry
		if err := rows.Scan(
			&e.ID, &e.MobTemplateID, &e.ItemID, &e.Chance, &e.MinCount, &e.MaxCount,
		); err != nil {
			return nil, fmt.Errorf("scanning loot row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating loot rows: %w", err)
	}
	return entries, nil
}
