package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/udisondev/mmogate/internal/model"
)

// SpawnZoneRepository loads the spawn zone reference table.
type SpawnZoneRepository struct {
	pool *pgxpool.Pool
}

// NewSpawnZoneRepository creates a SpawnZoneRepository.
func NewSpawnZoneRepository(pool *pgxpool.Pool) *SpawnZoneRepository {
	return &SpawnZoneRepository{pool: pool}
}

// LoadAll returns every spawn zone with an empty mob population.
func (r *SpawnZoneRepository) LoadAll(ctx context.Context) ([]*model.SpawnZone, error) {
	rows, err := r.pool.Query(ctx, stmtGetSpawnZones)
	if err != nil {
		return nil, fmt.Errorf("querying spawn zones: %w", err)
	}
	defer rows.Close()

	var zones []*model.SpawnZone
	for rows.Next() {
		var z model.SpawnZone
		var respawnSec int32
		if err := rows.Scan(
			&z.ZoneID, &z.Name,
			&z.Center.X, &z.Center.Y, &z.Center.Z,
			&z.Size.X, &z.Size.Y, &z.Size.Z,
			&z.MobTemplateID, &z.SpawnCount, &respawnSec,
		); err != nil {
			return nil, fmt.Errorf("scanning spawn zone row: %w", err)
		}
		z.RespawnTime = time.Duration(respawnSec) * time.Second
		zones = append(zones, &z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating spawn zone rows: %w", err)
	}
	return zones, nil
}
