package engine

import (
	"time"

	"github.com/wfunc/worserver/game"
	"github.com/wfunc/worserver/models"
	"github.com/wfunc/worserver/scheduler"
)

// Repository is the engine's view of persistence: the table's single
// active game aggregate plus the registered-user roster.
type Repository interface {
	GetCurrent() (*game.Game, error)
	Save(g *game.Game) error
	FindUser(id string) (*models.User, error)
}

// Notifier pushes state after a mutation is saved: full snapshots to the
// table display, per-player snapshots to phones.
type Notifier interface {
	ToTable(msgType string, g *game.Game) error
	ToPlayer(playerID, msgType string, p *game.Player) error
	ErrorToPlayer(playerID, msgType string) error
}

// DeadlineScheduler arms and cancels the per-game deadlines.
type DeadlineScheduler interface {
	Arm(gameID string, class scheduler.Class, delay time.Duration, callback func())
	Cancel(gameID string, class scheduler.Class)
	CancelAll(gameID string)
}

// RecordSink archives finished games. persistence.Database satisfies it.
type RecordSink interface {
	SaveGameRecord(rec *models.GameRecord) error
}

// Metrics receives engine counters. All methods must be safe from the
// engine's lane goroutine.
type Metrics interface {
	IncGamesCreated()
	IncRoundsResolved()
	IncDeadlineFired(class string)
}
