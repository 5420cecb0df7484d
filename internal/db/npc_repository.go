package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/udisondev/mmogate/internal/model"
)

// NpcRepository loads the NPC reference table.
type NpcRepository struct {
	pool *pgxpool.Pool
}

// NewNpcRepository creates an NpcRepository.
func NewNpcRepository(pool *pgxpool.Pool) *NpcRepository {
	return &NpcRepository{pool: pool}
}

// LoadAll returns every NPC.
func (r *NpcRepository) LoadAll(ctx context.Context) ([]model.Npc, error) {
	rows, err := r.pool.Query(ctx, stmtGetNpcs)
	if err != nil {
		return nil, fmt.Errorf("querying npcs: %w", err)
	}
	defer rows.Close()

	var npcs []model.Npc
	for rows.Next() {
		var n model.Npc
		if err := rows.Scan(
			&n.ID, &n.Name, &n.Title, &n.Type, &n.Level,
			&n.Position.X, &n.Position.Y, &n.Position.Z, &n.Position.RotZ,
		); err != nil {
			return nil, fmt.Errorf("scanning npc row: %w", err)
		}
		npcs = append(npcs, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating npc rows: %w", err)
	}
	return npcs, nil
}
