package models

import (
	"time"
)

// User is a pre-registered player identity for the table. Only known ids
// may join a game.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// GameRecord is the archived outcome of a finished game.
type GameRecord struct {
	GameID    string         `json:"game_id"`
	TableID   string         `json:"table_id"`
	Rounds    int            `json:"rounds"`
	Results   []PlayerResult `json:"results"`
	CreatedAt time.Time      `json:"created_at"`
}

// PlayerResult is one player's final line in a game record.
type PlayerResult struct {
	PlayerID    string `json:"player_id"`
	Username    string `json:"username"`
	CattleHeads int    `json:"cattle_heads"`
	Ranking     int    `json:"ranking"`
}
