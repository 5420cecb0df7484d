package gateway

import (
	"net"
	"sync"

	"github.com/udisondev/mmogate/internal/model"
)

// ClientManager tracks every authenticated client. Entries are indexed by
// client id and by socket; both indexes mutate inside one write-lock
// region, so whichever key a caller holds resolves to the same entry.
// Thread-safe.
type ClientManager struct {
	mu     sync.RWMutex
	byID   map[int64]*model.Client
	byConn map[net.Conn]*model.Client
}

// NewClientManager creates an empty client manager.
func NewClientManager() *ClientManager {
	return &ClientManager{
		byID:   make(map[int64]*model.Client, 1000),
		byConn: make(map[net.Conn]*model.Client, 1000),
	}
}

// Get returns a copy of the client, or a zero Client (ID == 0) when the id
// is not registered.
func (m *ClientManager) Get(id int64) model.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.byID[id]
	if !ok {
		return model.Client{}
	}
	return *c
}

// GetByConn returns the client registered on the socket, or a zero Client.
func (m *ClientManager) GetByConn(conn net.Conn) model.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.byConn[conn]
	if !ok {
		return model.Client{}
	}
	return *c
}

// GetAll returns copies of every registered client.
func (m *ClientManager) GetAll() []model.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Client, 0, len(m.byID))
	for _, c := range m.byID {
		out = append(out, *c)
	}
	return out
}

// Upsert registers the client under both indexes. A client reconnecting on
// a new socket replaces its old socket entry.
func (m *ClientManager) Upsert(c model.Client) {
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

// Remove drops the client from both indexes.
func (m *ClientManager) Remove(id int64) {
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

// RemoveByConn drops the client registered on the socket from both indexes.
// Returns the removed client so the disconnect path knows which character
// to flush; a zero Client means the socket never authenticated.
func (m *ClientManager) RemoveByConn(conn net.Conn) model.Client {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.byConn[conn]
	if !ok {
		return model.Client{}
	}
	delete(m.byConn, conn)
	delete(m.byID, c.ID)
	return *c
}

// Count returns the number of registered clients.
func (m *ClientManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

// ForEach calls fn with a copy of every client until fn returns false.
func (m *ClientManager) ForEach(fn func(model.Client) bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.byID {
		if !fn(*c) {
			return
		}
	}
}
