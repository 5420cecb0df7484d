package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/udisondev/mmogate/internal/model"
)

// ItemRepository loads the item reference table.
type ItemRepository struct {
	pool *pgxpool.Pool
}

// NewItemRepository creates an ItemRepository.
func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

// LoadAll returns every item template.
func (r *ItemRepository) LoadAll(ctx context.Context) ([]model.ItemTemplate, error) {
	rows, err := r.pool.Query(ctx, stmtGetItems)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	var items []model.ItemTemplate
	for rows.Next() {
		var it model.ItemTemplate
		if err := rows.Scan(&it.ID, &it.Name, &it.Type, &it.Grade, &it.Weight, &it.Price); err != nil {
			return nil, fmt.Errorf("scanning item row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating item rows: %w", err)
	}
	return items, nil
}
