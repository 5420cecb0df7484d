package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/udisondev/mmogate/internal/model"
)

// MobTemplateRepository loads the mob blueprint reference table.
type MobTemplateRepository struct {
	pool *pgxpool.Pool
}

// NewMobTemplateRepository creates a MobTemplateRepository.
func NewMobTemplateRepository(pool *pgxpool.Pool) *MobTemplateRepository {
	return &MobTemplateRepository{pool: pool}
}

// LoadAll returns every mob template. The attributes column is JSONB and
// scans straight into the map.
func (r *MobTemplateRepository) LoadAll(ctx context.Context) ([]model.MobTemplate, error) {
	rows, err := r.pool.Query(ctx, stmtGetMobTemplates)
	if err != nil {
		return nil, fmt.Errorf("querying mob templates: %w", err)
	}
	defer rows.Close()

	var templates []model.MobTemplate
	for rows.Next() {
		var t model.MobTemplate
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Level, &t.Race, &t.HP, &t.MP, &t.Aggressive, &t.Attributes,
		); err != nil {
			return nil, fmt.Errorf("scanning mob template row: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mob template rows: %w", err)
	}
	return templates, nil
}
