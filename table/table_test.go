package table

import (
	"os"
	"testing"
	"time"

	"github.com/wfunc/worserver/config"
	"github.com/wfunc/worserver/engine"
	"github.com/wfunc/worserver/game"
	"github.com/wfunc/worserver/logger"
	"github.com/wfunc/worserver/persistence"
	"github.com/wfunc/worserver/scheduler"
	"github.com/wfunc/worserver/services"
)

func TestMain(m *testing.M) {
	logger.InitNop()
	os.Exit(m.Run())
}

// nopNotifier drops every push.
type nopNotifier struct{}

func (nopNotifier) ToTable(msgType string, g *game.Game) error              { return nil }
func (nopNotifier) ToPlayer(playerID, msgType string, p *game.Player) error { return nil }
func (nopNotifier) ErrorToPlayer(playerID, msgType string) error            { return nil }

// nopScheduler discards every deadline.
type nopScheduler struct{}

func (nopScheduler) Arm(gameID string, class scheduler.Class, delay time.Duration, callback func()) {
}
func (nopScheduler) Cancel(gameID string, class scheduler.Class) {}
func (nopScheduler) CancelAll(gameID string)                     {}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager()
	db := persistence.NewMemory()
	cfg := config.GameConfig{MaxRounds: 10, MinPlayers: 2, MaxPlayers: 10}

	created := m.CreateTable("main", db, nopNotifier{}, nopScheduler{}, cfg)
	if created.Engine == nil || created.Engine.TableID() != "main" {
		t.Fatal("Expected the table to carry an engine scoped to it")
	}

	got, ok := m.GetTable("main")
	if !ok || got != created {
		t.Error("GetTable returned the wrong table")
	}
	if _, ok := m.GetTable("other"); ok {
		t.Error("Unknown table id must not resolve")
	}
	if m.Count() != 1 {
		t.Errorf("Expected 1 table, got %d", m.Count())
	}

	m.RemoveTable("main")
	if m.Count() != 0 {
		t.Errorf("Expected no tables, got %d", m.Count())
	}
}

func TestTablesAreIndependent(t *testing.T) {
	m := NewManager()
	db := persistence.NewMemory()
	cfg := config.GameConfig{MaxRounds: 10, MinPlayers: 2, MaxPlayers: 10}

	t1 := m.CreateTable("t1", db, nopNotifier{}, nopScheduler{}, cfg)
	t2 := m.CreateTable("t2", db, nopNotifier{}, nopScheduler{}, cfg)

	if err := t1.Engine.CreateNewGame(); err != nil {
		t.Fatalf("CreateNewGame failed: %v", err)
	}

	if _, err := t1.Engine.CurrentGame(); err != nil {
		t.Errorf("t1 should hold a game: %v", err)
	}
	if _, err := t2.Engine.CurrentGame(); err != game.ErrGameNotFound {
		t.Errorf("t2 must not see t1's game, got %v", err)
	}
}

// finishGame drives a crafted one-round game on the given table to
// completion.
func finishGame(t *testing.T, db *persistence.Memory, tableID string, eng *engine.Engine) {
	t.Helper()

	played := 40
	g := game.New("game-" + tableID)
	g.Phase = game.PhaseRoundInProgress
	g.CurrentRound = 1
	g.Stacks = []*game.Stack{
		{Cards: []game.Card{{Value: 10, CattleHead: 3}}},
		{Cards: []game.Card{{Value: 35, CattleHead: 2}}},
		{Cards: []game.Card{{Value: 58, CattleHead: 1}}},
		{Cards: []game.Card{{Value: 80, CattleHead: 3}}},
	}
	for i, id := range []string{"u1", "u2"} {
		c := game.Card{Value: played, CattleHead: 1}
		g.Players = append(g.Players, &game.Player{
			ID:            id,
			JoinOrder:     i,
			PlayedCard:    &c,
			HadPlayedTurn: true,
		})
		played += 2
	}
	if err := db.SaveGame(tableID, g); err != nil {
		t.Fatalf("SaveGame failed: %v", err)
	}

	if err := eng.CheckAllPlayersPlayed(); err != nil {
		t.Fatalf("CheckAllPlayersPlayed failed: %v", err)
	}
	if err := eng.NextRoundResultAction(nil); err != nil {
		t.Fatalf("NextRoundResultAction failed: %v", err)
	}
}

func TestArchivingIsWiredByCaller(t *testing.T) {
	m := NewManager()
	db := persistence.NewMemory()
	cfg := config.GameConfig{MaxRounds: 1, MinPlayers: 2, MaxPlayers: 10}

	// A bare table has no record sink; finishing a game archives nothing.
	bare := m.CreateTable("bare", db, nopNotifier{}, nopScheduler{}, cfg)
	finishGame(t, db, "bare", bare.Engine)
	if got := len(db.Records()); got != 0 {
		t.Fatalf("Expected no archived records without a sink, got %d", got)
	}

	// Wiring the record service is the single archiving point.
	wired := m.CreateTable("wired", db, nopNotifier{}, nopScheduler{}, cfg)
	wired.Engine.SetRecordSink(services.NewRecordService(db))
	finishGame(t, db, "wired", wired.Engine)

	records := db.Records()
	if len(records) != 1 {
		t.Fatalf("Expected exactly one archived record, got %d", len(records))
	}
	if records[0].TableID != "wired" {
		t.Errorf("Expected the wired table's record, got %+v", records[0])
	}
}
