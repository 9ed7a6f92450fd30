package services

import (
	"os"
	"testing"

	"github.com/wfunc/worserver/config"
	"github.com/wfunc/worserver/logger"
	"github.com/wfunc/worserver/models"
	"github.com/wfunc/worserver/persistence"
)

func TestMain(m *testing.M) {
	logger.InitNop()
	os.Exit(m.Run())
}

func TestEnsureRegistered(t *testing.T) {
	db := persistence.NewMemory()
	svc := NewUserService(db)

	roster := []config.RegisteredUser{
		{ID: "u1", Username: "alice"},
		{ID: "u2", Username: "bob"},
	}
	if err := svc.EnsureRegistered(roster); err != nil {
		t.Fatalf("EnsureRegistered failed: %v", err)
	}

	u, err := svc.GetUser("u1")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if u.Username != "alice" {
		t.Errorf("Expected alice, got %s", u.Username)
	}

	// Seeding again must refresh rows, not duplicate them.
	roster[0].Username = "alice2"
	if err := svc.EnsureRegistered(roster); err != nil {
		t.Fatalf("EnsureRegistered failed: %v", err)
	}
	users, err := svc.ListUsers()
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("Expected 2 users, got %d", len(users))
	}
	if users[0].Username != "alice2" {
		t.Errorf("Expected refreshed username, got %s", users[0].Username)
	}

	if _, err := svc.GetUser("ghost"); err != persistence.ErrRecordNotFound {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}

func TestRecordServiceArchives(t *testing.T) {
	db := persistence.NewMemory()
	svc := NewRecordService(db)

	if err := svc.SaveGameRecord(&models.GameRecord{GameID: "g1", TableID: "main", Rounds: 10}); err != nil {
		t.Fatalf("SaveGameRecord failed: %v", err)
	}

	records := db.Records()
	if len(records) != 1 || records[0].GameID != "g1" {
		t.Errorf("Unexpected records: %+v", records)
	}
}
