package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/udisondev/mmogate/internal/model"
)

// CharacterRepository loads and persists gateway-cached characters.
type CharacterRepository struct {
	pool *pgxpool.Pool
}

// NewCharacterRepository creates a CharacterRepository.
func NewCharacterRepository(pool *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{pool: pool}
}

// Load fetches a character with its attributes, skills and position inside
// one transaction so the snapshot is consistent. Returns nil, nil when the
// character does not exist.
func (r *CharacterRepository) Load(ctx context.Context, characterID int64) (*model.Character, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin load for character %d: %w", characterID, err)
	}
	defer rollback(ctx, tx, characterID)

	var c model.Character
	err = tx.QueryRow(ctx, stmtGetCharacter, characterID).Scan(
		&c.ID, &c.OwnerID, &c.Name, &c.Class, &c.Race, &c.Level, &c.Exp,
		&c.HP, &c.MP, &c.MaxHP, &c.MaxMP,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying character %d: %w", characterID, err)
	}

	c.Attributes, err = loadAttributes(ctx, tx, characterID)
	if err != nil {
		return nil, err
	}

	c.Skills, err = loadSkills(ctx, tx, characterID)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRow(ctx, stmtGetCharacterPosition, characterID).Scan(
		&c.Position.X, &c.Position.Y, &c.Position.Z, &c.Position.RotZ,
	)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("querying position for character %d: %w", characterID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit load for character %d: %w", characterID, err)
	}
	return &c, nil
}

func loadAttributes(ctx context.Context, tx pgx.Tx, characterID int64) (map[string]int32, error) {
	rows, err := tx.Query(ctx, stmtGetCharacterAttributes, characterID)
	if err != nil {
		return nil, fmt.Errorf("querying attributes for character %d: %w", characterID, err)
	}
	defer rows.Close()

	attrs := make(map[string]int32)
	for rows.Next() {
		var name string
		var value int32
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scanning attribute row: %w", err)
		}
		attrs[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attribute rows: %w", err)
	}
	return attrs, nil
}

func loadSkills(ctx context.Context, tx pgx.Tx, characterID int64) ([]model.CharacterSkill, error) {
	rows, err := tx.Query(ctx, stmtGetCharacterSkills, characterID)
	if err != nil {
		return nil, fmt.Errorf("querying skills for character %d: %w", characterID, err)
	}
	defer rows.Close()

	var skills []model.CharacterSkill
	for rows.Next() {
		var s model.CharacterSkill
		if err := rows.Scan(&s.SkillID, &s.Level, &s.Name); err != nil {
			return nil, fmt.Errorf("scanning skill row: %w", err)
		}
		skills = append(skills, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating skill rows: %w", err)
	}
	return skills, nil
}

// Save persists one character and its position in a transaction. Used by
// the disconnect path for the final flush.
func (r *CharacterRepository) Save(ctx context.Context, c model.Character) error {
	return r.SaveAll(ctx, []model.Character{c})
}

// SaveAll persists a batch of characters in one transaction. Either the
// whole batch lands or none of it does, so a failed flush retries cleanly
// on the next tick.
func (r *CharacterRepository) SaveAll(ctx context.Context, chars []model.Character) error {
	if len(chars) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin character flush: %w", err)
	}
	defer rollback(ctx, tx, 0)

	for _, c := range chars {
		if _, err := tx.Exec(ctx, stmtUpdateCharacter,
			c.ID, c.Level, c.Exp, c.HP, c.MP, c.MaxHP, c.MaxMP,
		); err != nil {
			return fmt.Errorf("updating character %d: %w", c.ID, err)
		}
		if _, err := tx.Exec(ctx, stmtUpdateCharacterPosition,
			c.ID, c.Position.X, c.Position.Y, c.Position.Z, c.Position.RotZ,
		); err != nil {
			return fmt.Errorf("updating position for character %d: %w", c.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit character flush: %w", err)
	}
	return nil
}

// SaveAttribute upserts one named attribute for a character.
func (r *CharacterRepository) SaveAttribute(ctx context.Context, characterID int64, name string, value int32) error {
	if _, err := r.pool.Exec(ctx, stmtInsertCharacterAttr, characterID, name, value); err != nil {
		return fmt.Errorf("saving attribute %s for character %d: %w", name, characterID, err)
	}
	return nil
}

func rollback(ctx context.Context, tx pgx.Tx, characterID int64) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.Error("rollback failed", "characterID", characterID, "error", err)
	}
}
