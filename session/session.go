package session

import (
	"sync"
	"time"

	"github.com/wfunc/worserver/network"
)

// Role tells which kind of client a connection belongs to.
type Role string

const (
	// RoleTable is the shared table display. It receives full game
	// snapshots.
	RoleTable Role = "table"
	// RolePhone is a per-player phone client. It receives only its own
	// player snapshot.
	RolePhone Role = "phone"
)

// Session is one live connection, either the table display or a phone.
type Session struct {
	ID         string
	Conn       network.Connection
	Role       Role
	PlayerID   string
	CreatedAt  time.Time
	lastActive time.Time
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		lastActive: now,
	}
}

// SetRole marks the session as the table display or a phone client.
func (s *Session) SetRole(role Role) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.Role = role
}

// GetRole returns the session's registered role.
func (s *Session) GetRole() Role {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.Role
}

// BindPlayer attaches a game player id to a phone session so per-player
// messages can find it.
func (s *Session) BindPlayer(playerID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.PlayerID = playerID
}

// GetPlayerID returns the bound player id, empty for unbound sessions.
func (s *Session) GetPlayerID() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.PlayerID
}

// Touch records activity on the session. Sends and heartbeats go through
// it; it takes the mutex because reads and sends race on it otherwise.
func (s *Session) Touch() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.lastActive = time.Now()
}

// LastActive returns when the session last sent or received anything.
func (s *Session) LastActive() time.Time {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.lastActive
}

func (s *Session) Send(msgID uint16, data []byte) error {
	s.Touch()
	return s.Conn.Send(msgID, data)
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager tracks all live sessions.
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

// TableSessions returns every session registered as the table display.
func (m *Manager) TableSessions() []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, s := range m.sessions {
		if s.GetRole() == RoleTable {
			result = append(result, s)
		}
	}
	return result
}

// GetByPlayerID returns the phone sessions bound to a player.
func (m *Manager) GetByPlayerID(playerID string) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, s := range m.sessions {
		if s.GetPlayerID() == playerID {
			result = append(result, s)
		}
	}
	return result
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}
