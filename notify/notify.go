// Package notify delivers game state to connected clients: full snapshots
// to the table display, per-player snapshots to phones.
package notify

import (
	"encoding/json"

	"github.com/wfunc/worserver/game"
	"github.com/wfunc/worserver/logger"
	"github.com/wfunc/worserver/network"
	"github.com/wfunc/worserver/session"
)

// TableMessage is the envelope broadcast to the table display.
type TableMessage struct {
	Type    string     `json:"type"`
	Payload *game.Game `json:"payload"`
}

// PlayerMessage is the envelope sent to one phone client.
type PlayerMessage struct {
	Type    string       `json:"type"`
	Payload *game.Player `json:"payload"`
}

// ErrorMessage tells one phone client its last action was rejected.
type ErrorMessage struct {
	Type string `json:"type"`
}

// SessionNotifier fans messages out over the session manager.
type SessionNotifier struct {
	sessions *session.Manager
}

func NewSessionNotifier(sessions *session.Manager) *SessionNotifier {
	return &SessionNotifier{sessions: sessions}
}

// ToTable broadcasts the full game snapshot to every table session. A
// failing session is skipped, the rest still receive the update.
func (n *SessionNotifier) ToTable(msgType string, g *game.Game) error {
	data, err := json.Marshal(TableMessage{Type: msgType, Payload: g})
	if err != nil {
		return err
	}

	for _, s := range n.sessions.TableSessions() {
		if err := s.Send(network.MsgTypeTableState, data); err != nil {
			logger.Log.Warnf("Dropping table update for session %s: %v", s.GetID(), err)
			continue
		}
	}
	return nil
}

// ToPlayer sends a player their own snapshot.
func (n *SessionNotifier) ToPlayer(playerID, msgType string, p *game.Player) error {
	data, err := json.Marshal(PlayerMessage{Type: msgType, Payload: p})
	if err != nil {
		return err
	}

	for _, s := range n.sessions.GetByPlayerID(playerID) {
		if err := s.Send(network.MsgTypePlayerState, data); err != nil {
			logger.Log.Warnf("Dropping player update for session %s: %v", s.GetID(), err)
			continue
		}
	}
	return nil
}

// ErrorToPlayer tells one player their action was rejected.
func (n *SessionNotifier) ErrorToPlayer(playerID, msgType string) error {
	data, err := json.Marshal(ErrorMessage{Type: msgType})
	if err != nil {
		return err
	}

	for _, s := range n.sessions.GetByPlayerID(playerID) {
		if err := s.Send(network.MsgTypePlayerError, data); err != nil {
			logger.Log.Warnf("Dropping player error for session %s: %v", s.GetID(), err)
			continue
		}
	}
	return nil
}
