package persistence

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/wfunc/worserver/game"
	"github.com/wfunc/worserver/models"
)

// Memory is an in-process Database, used by tests and the no-database dev
// mode. Games are stored as serialized snapshots so callers get the same
// copy-on-load behavior as the real backends.
type Memory struct {
	games   map[string][]byte
	users   map[string]models.User
	order   []string
	records []models.GameRecord
	mutex   sync.RWMutex
}

func NewMemory() *Memory {
	return &Memory{
		games: make(map[string][]byte),
		users: make(map[string]models.User),
	}
}

func (m *Memory) LoadCurrentGame(tableID string) (*game.Game, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	raw, exists := m.games[tableID]
	if !exists {
		return nil, ErrRecordNotFound
	}

	var g game.Game
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (m *Memory) SaveGame(tableID string, g *game.Game) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.games[tableID] = raw
	return nil
}

func (m *Memory) FindUser(id string) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	u, exists := m.users[id]
	if !exists {
		return nil, ErrRecordNotFound
	}
	return &u, nil
}

func (m *Memory) CreateUser(u *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.users[u.ID]; !exists {
		m.order = append(m.order, u.ID)
	}
	stored := *u
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	m.users[u.ID] = stored
	return nil
}

func (m *Memory) ListUsers() ([]models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	users := make([]models.User, 0, len(m.order))
	for _, id := range m.order {
		users = append(users, m.users[id])
	}
	return users, nil
}

func (m *Memory) SaveGameRecord(rec *models.GameRecord) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.records = append(m.records, *rec)
	return nil
}

// Records returns the archived games, for test inspection.
func (m *Memory) Records() []models.GameRecord {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	out := make([]models.GameRecord, len(m.records))
	copy(out, m.records)
	return out
}

func (m *Memory) Close() error {
	return nil
}
