package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/wfunc/worserver/game"
	"github.com/wfunc/worserver/models"
)

// PostgreSQL is the raw database/sql storage implementation, for
// deployments that prefer plain SQL over GORM.
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL opens a PostgreSQL connection and creates the tables.
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS games (
            id SERIAL PRIMARY KEY,
            table_id TEXT UNIQUE NOT NULL,
            game_id TEXT NOT NULL,
            phase TEXT NOT NULL,
            round INT NOT NULL DEFAULT 0,
            state JSONB NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            user_id TEXT UNIQUE NOT NULL,
            username TEXT NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS game_records (
            id SERIAL PRIMARY KEY,
            game_id TEXT NOT NULL,
            table_id TEXT NOT NULL,
            rounds INT NOT NULL DEFAULT 0,
            results JSONB NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`)
	return err
}

// LoadCurrentGame returns the active game aggregate for a table.
func (p *PostgreSQL) LoadCurrentGame(tableID string) (*game.Game, error) {
	var state []byte
	err := p.db.QueryRow(
		`SELECT state FROM games WHERE table_id = $1`, tableID,
	).Scan(&state)
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	var g game.Game
	if err := json.Unmarshal(state, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// SaveGame upserts the whole aggregate for a table.
func (p *PostgreSQL) SaveGame(tableID string, g *game.Game) error {
	state, err := json.Marshal(g)
	if err != nil {
		return err
	}

	_, err = p.db.Exec(`
        INSERT INTO games (table_id, game_id, phase, round, state)
        VALUES ($1, $2, $3, $4, $5::jsonb)
        ON CONFLICT (table_id) DO UPDATE
        SET game_id = $2, phase = $3, round = $4, state = $5::jsonb,
            updated_at = CURRENT_TIMESTAMP`,
		tableID, g.ID, string(g.Phase), g.CurrentRound, state)
	return err
}

// FindUser looks up a pre-registered player id.
func (p *PostgreSQL) FindUser(id string) (*models.User, error) {
	u := &models.User{}
	err := p.db.QueryRow(
		`SELECT user_id, username, created_at FROM users WHERE user_id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser registers a player id, refreshing the username on conflict.
func (p *PostgreSQL) CreateUser(u *models.User) error {
	_, err := p.db.Exec(`
        INSERT INTO users (user_id, username) VALUES ($1, $2)
        ON CONFLICT (user_id) DO UPDATE SET username = $2`,
		u.ID, u.Username)
	return err
}

// ListUsers returns every registered player.
func (p *PostgreSQL) ListUsers() ([]models.User, error) {
	rows, err := p.db.Query(
		`SELECT user_id, username, created_at FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SaveGameRecord archives a finished game.
func (p *PostgreSQL) SaveGameRecord(rec *models.GameRecord) error {
	results, err := json.Marshal(rec.Results)
	if err != nil {
		return err
	}

	_, err = p.db.Exec(`
        INSERT INTO game_records (game_id, table_id, rounds, results)
        VALUES ($1, $2, $3, $4::jsonb)`,
		rec.GameID, rec.TableID, rec.Rounds, results)
	return err
}

// Close closes the connection pool.
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
