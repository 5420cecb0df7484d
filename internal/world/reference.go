package world

import (
	"context"
	"fmt"
	"sync"

	"github.com/udisondev/mmogate/internal/model"
)

// Repositories the reference tables load from. Declared here, at the point
// of use; internal/db satisfies them.
type (
	// NpcRepository loads the NPC reference rows.
	NpcRepository interface {
		LoadAll(ctx context.Context) ([]model.Npc, error)
	}

	// ItemRepository loads the item reference rows.
	ItemRepository interface {
		LoadAll(ctx context.Context) ([]model.ItemTemplate, error)
	}

	// LootRepository loads the loot reference rows.
	LootRepository interface {
		LoadAll(ctx context.Context) ([]model.LootEntry, error)
	}
)

// NpcTable holds every NPC, loaded once at startup. The RWMutex only guards
// against a Reload racing readers; steady-state access is read-only.
type NpcTable struct {
	mu   sync.RWMutex
	npcs map[int64]model.Npc
}

// LoadNpcTable builds the table from the repository.
func LoadNpcTable(ctx context.Context, repo NpcRepository) (*NpcTable, error) {
	npcs, err := repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading npcs: %w", err)
	}

	t := &NpcTable{npcs: make(map[int64]model.Npc, len(npcs))}
	for _, n := range npcs {
		t.npcs[n.ID] = n
	}
	return t, nil
}

// Get returns the NPC, or a zero Npc (ID == 0) when unknown.
func (t *NpcTable) Get(id int64) model.Npc {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.npcs[id]
}

// GetAll returns every NPC.
func (t *NpcTable) GetAll() []model.Npc {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]model.Npc, 0, len(t.npcs))
	for _, n := range t.npcs {
		out = append(out, n)
	}
	return out
}

// Count returns the number of loaded NPCs.
func (t *NpcTable) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.npcs)
}

// ItemTable holds every item template, loaded once at startup.
type ItemTable struct {
	mu    sync.RWMutex
	items map[int64]model.ItemTemplate
}

// LoadItemTable builds the table from the repository.
func LoadItemTable(ctx context.Context, repo ItemRepository) (*ItemTable, error) {
	items, err := repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}

	t := &ItemTable{items: make(map[int64]model.ItemTemplate, len(items))}
	for _, it := range items {
		t.items[it.ID] = it
	}
	return t, nil
}

// Get returns the item template, or a zero ItemTemplate when unknown.
func (t *ItemTable) Get(id int64) model.ItemTemplate {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.items[id]
}

// GetAll returns every item template.
func (t *ItemTable) GetAll() []model.ItemTemplate {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]model.ItemTemplate, 0, len(t.items))
	for _, it := range t.items {
		out = append(out, it)
	}
	return out
}

// Count returns the number of loaded item templates.
func (t *ItemTable) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}

// LootTable holds every loot entry grouped by mob template.
type LootTable struct {
	mu      sync.RWMutex
	byMob   map[int32][]model.LootEntry
	entries int
}

// LoadLootTable builds the table from the repository.
func LoadLootTable(ctx context.Context, repo LootRepository) (*LootTable, error) {
	entries, err := repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading loot: %w", err)
	}

	t := &LootTable{byMob: make(map[int32][]model.LootEntry)}
	for _, e := range entries {
		t.byMob[e.MobTemplateID] = append(t.byMob[e.MobTemplateID], e)
	}
	t.entries = len(entries)
	return t, nil
}

// ForMob returns the loot entries of one mob template, possibly empty.
func (t *LootTable) ForMob(templateID int32) []model.LootEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	src := t.byMob[templateID]
	out := make([]model.LootEntry, len(src))
	copy(out, src)
	return out
}

// Count returns the total number of loot entries.
func (t *LootTable) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.entries
}
