package world

import (
	"sync"

	"github.com/udisondev/mmogate/internal/model"
)

// CharacterManager is the in-memory authoritative view of online characters.
// Entries appear on join, are mutated by handlers and flushed back to the
// database by the periodic persistence task. Thread-safe.
//
// Write-back discipline: every mutation sets Dirty and bumps Version under
// the write lock. The flusher snapshots dirty rows, persists them outside
// any lock, then calls ClearDirty with the snapshotted version; a row that
// advanced in the meantime keeps its flag, so no update is ever lost.
type CharacterManager struct {
	mu         sync.RWMutex
	characters map[int64]*model.Character
}

// NewCharacterManager creates an empty character manager.
func NewCharacterManager() *CharacterManager {
	return &CharacterManager{
		characters: make(map[int64]*model.Character),
	}
}

// Get returns a copy of the character, or a zero Character (ID == 0) when
// it is not cached.
func (m *CharacterManager) Get(id int64) model.Character {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.characters[id]
	if !ok {
		return model.Character{}
	}
	return c.Clone()
}

// GetAll returns copies of every cached character.
func (m *CharacterManager) GetAll() []model.Character {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Character, 0, len(m.characters))
	for _, c := range m.characters {
		out = append(out, c.Clone())
	}
	return out
}

// Upsert stores a copy of c. A fresh entry starts clean: the row was just
// loaded from (or about to be written to) the database by the caller.
func (m *CharacterManager) Upsert(c model.Character) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := c.Clone()
	m.characters[c.ID] = &cp
}

// Remove drops the character from the cache. Callers flush first.
func (m *CharacterManager) Remove(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.characters, id)
}

// Count returns the number of cached characters.
func (m *CharacterManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.characters)
}

// UpdatePosition moves a cached character and marks it dirty. Returns false
// when the character is not cached; movement for an unknown character is
// the caller's drop-with-log case.
func (m *CharacterManager) UpdatePosition(id int64, pos model.Position) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.characters[id]
	if !ok {
		return false
	}
	c.Position = pos
	c.Dirty = true
	c.Version++
	return true
}

// Mutate applies fn to the cached character under the write lock and marks
// it dirty. fn must not block or touch other caches.
func (m *CharacterManager) Mutate(id int64, fn func(*model.Character)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.characters[id]
	if !ok {
		return false
	}
	fn(c)
	c.Dirty = true
	c.Version++
	return true
}

// DirtySnapshot returns copies of every dirty character. The flusher
// persists them without holding the lock and reports back per row through
// ClearDirty.
func (m *CharacterManager) DirtySnapshot() []model.Character {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Character
	for _, c := range m.characters {
		if c.Dirty {
			out = append(out, c.Clone())
		}
	}
	return out
}

// ClearDirty clears the dirty flag if the row still carries the version the
// flusher snapshotted. A concurrent mutation advanced the version, so the
// flag stays set and the next tick persists the newer state.
func (m *CharacterManager) ClearDirty(id int64, version uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.characters[id]
	if !ok {
		return
	}
	if c.Version == version {
		c.Dirty = false
	}
}
