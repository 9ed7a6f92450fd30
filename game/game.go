package game

import "time"

// ActionType discriminates the pending action blocking round resolution.
type ActionType string

const (
	// ActionChooseStackCard waits for a player whose card fits no stack to
	// pick the stack they will claim.
	ActionChooseStackCard ActionType = "CHOOSE_STACK_CARD"

	// ActionNextRound waits for the table to advance to the next round.
	ActionNextRound ActionType = "NEXT_ROUND"
)

// PendingAction is a forced decision the resolver suspended on. It is
// settled either by a manual call or by the scheduler's default.
type PendingAction struct {
	Type     ActionType `json:"type"`
	PlayerID string     `json:"player_id,omitempty"`
	Card     Card       `json:"card,omitempty"`
	Deadline time.Time  `json:"deadline"`
}

// Game is the single aggregate per table. It is always read, mutated and
// saved as a whole; Version counts applied transitions so a stale timer can
// recognize that the game moved on without it.
type Game struct {
	ID           string         `json:"id"`
	Phase        Phase          `json:"phase"`
	Players      []*Player      `json:"players"`
	Stacks       []*Stack       `json:"stacks"`
	CurrentRound int            `json:"current_round"`
	Pending      *PendingAction `json:"pending_action"`
	Version      uint64         `json:"version"`
	CreatedAt    time.Time      `json:"created_at"`
}

// New creates an empty game in the lobby phase.
func New(id string) *Game {
	return &Game{
		ID:        id,
		Phase:     PhaseLobby,
		Players:   []*Player{},
		Stacks:    []*Stack{},
		CreatedAt: time.Now(),
	}
}

// Transition moves the game to the given phase and bumps the version.
func (g *Game) Transition(to Phase) error {
	if !CanTransition(g.Phase, to) {
		return ErrTransitionNotAllowed
	}
	g.Phase = to
	g.Version++
	return nil
}

// FindPlayer returns the seated player with the given id.
func (g *Game) FindPlayer(id string) (*Player, bool) {
	for _, p := range g.Players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// AllPlayersPlayed reports whether every seated player has a played card
// for the current round.
func (g *Game) AllPlayersPlayed() bool {
	if len(g.Players) == 0 {
		return false
	}
	for _, p := range g.Players {
		if !p.HadPlayedTurn {
			return false
		}
	}
	return true
}

// UnresolvedPlayers returns players whose played card has not yet been
// placed or claimed, in seating order.
func (g *Game) UnresolvedPlayers() []*Player {
	var out []*Player
	for _, p := range g.Players {
		if p.PlayedCard != nil {
			out = append(out, p)
		}
	}
	return out
}

// ResetTurn clears per-round player state ahead of a new round.
func (g *Game) ResetTurn() {
	for _, p := range g.Players {
		p.PlayedCard = nil
		p.HadPlayedTurn = false
	}
	g.Pending = nil
}
