package chunk

import (
	"net"
	"sync"

	"github.com/udisondev/mmogate/internal/model"
)

// Manager is the registry of chunk-server peers. Entries are indexed both
// by chunk id and by socket; the two indexes mutate together under one
// write lock, so a chunk reachable through one index is always reachable
// through the other.
type Manager struct {
	mu     sync.RWMutex
	byID   map[int64]*model.Chunk
	byConn map[net.Conn]*model.Chunk
}

// NewManager creates an empty chunk registry.
func NewManager() *Manager {
	return &Manager{
		byID:   make(map[int64]*model.Chunk),
		byConn: make(map[net.Conn]*model.Chunk),
	}
}

// Get returns a copy of the chunk, or a zero Chunk (ID == 0) when unknown.
func (m *Manager) Get(id int64) model.Chunk {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.byID[id]
	if !ok {
		return model.Chunk{}
	}
	return *c
}

// GetByConn returns the chunk registered on the socket, or a zero Chunk.
func (m *Manager) GetByConn(conn net.Conn) model.Chunk {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.byConn[conn]
	if !ok {
		return model.Chunk{}
	}
	return *c
}

// GetAll returns copies of every registered chunk.
func (m *Manager) GetAll() []model.Chunk {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Chunk, 0, len(m.byID))
	for _, c := range m.byID {
		out = append(out, *c)
	}
	return out
}

// Upsert registers the chunk under both indexes. A re-registration with a
// new socket drops the stale socket entry first.
func (m *Manager) Upsert(c model.Chunk) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.byID[c.ID]; ok && old.Conn != nil {
		delete(m.byConn, old.Conn)
	}
	cp := c
	m.byID[c.ID] = &cp
	if c.Conn != nil {
		m.byConn[c.Conn] = &cp
	}
}

// Remove drops the chunk from both indexes.
func (m *Manager) Remove(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.byID[id]
	if !ok {
		return
	}
	delete(m.byID, id)
	if c.Conn != nil {
		delete(m.byConn, c.Conn)
	}
}

// RemoveByConn drops the chunk registered on the socket from both indexes.
func (m *Manager) RemoveByConn(conn net.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.byConn[conn]
	if !ok {
		return
	}
	delete(m.byConn, conn)
	delete(m.byID, c.ID)
}

// Count returns the number of registered chunks.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}
