// Package table groups one shared display and its phone players around a
// single game engine. Tables are fully independent: nothing is shared
// between them but the process.
package table

import (
	"sync"
	"time"

	"github.com/wfunc/worserver/config"
	"github.com/wfunc/worserver/engine"
	"github.com/wfunc/worserver/persistence"
)

// Table is one physical table: its id, its engine and its creation time.
// Serialization of game mutations lives in the engine's lane, the table
// itself holds no game state.
type Table struct {
	ID        string
	Engine    *engine.Engine
	CreatedAt time.Time
}

// Manager tracks all tables served by this process.
type Manager struct {
	tables map[string]*Table
	mutex  sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		tables: make(map[string]*Table),
	}
}

// CreateTable wires a new table: a repository scoped to it, the shared
// notifier and scheduler, and a fresh engine. Archiving of finished games
// stays with the caller, which wires a record sink onto the engine.
func (m *Manager) CreateTable(id string, db persistence.Database, notifier engine.Notifier, sched engine.DeadlineScheduler, cfg config.GameConfig) *Table {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	eng := engine.New(id, persistence.NewTableGameRepository(db, id), notifier, sched, cfg)

	t := &Table{
		ID:        id,
		Engine:    eng,
		CreatedAt: time.Now(),
	}
	m.tables[id] = t
	return t
}

// GetTable returns a table by id.
func (m *Manager) GetTable(id string) (*Table, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	t, exists := m.tables[id]
	return t, exists
}

// RemoveTable drops a table from the manager.
func (m *Manager) RemoveTable(id string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.tables, id)
}

// Count returns the number of active tables.
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.tables)
}
