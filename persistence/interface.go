package persistence

import (
	"errors"

	"github.com/wfunc/worserver/game"
	"github.com/wfunc/worserver/models"
)

// ErrRecordNotFound is returned when a lookup finds nothing. Callers map it
// onto their own domain error.
var ErrRecordNotFound = errors.New("record not found")

// Database is the storage backend: the per-table game aggregate, the
// registered user roster and finished-game records.
type Database interface {
	LoadCurrentGame(tableID string) (*game.Game, error)
	SaveGame(tableID string, g *game.Game) error
	FindUser(id string) (*models.User, error)
	CreateUser(u *models.User) error
	ListUsers() ([]models.User, error)
	SaveGameRecord(rec *models.GameRecord) error
	Close() error
}

// TableGameRepository scopes a Database to one table's single active game
// aggregate. It is the engine's view of persistence.
type TableGameRepository struct {
	db      Database
	tableID string
}

func NewTableGameRepository(db Database, tableID string) *TableGameRepository {
	return &TableGameRepository{db: db, tableID: tableID}
}

func (r *TableGameRepository) GetCurrent() (*game.Game, error) {
	return r.db.LoadCurrentGame(r.tableID)
}

func (r *TableGameRepository) Save(g *game.Game) error {
	return r.db.SaveGame(r.tableID, g)
}

func (r *TableGameRepository) FindUser(id string) (*models.User, error) {
	return r.db.FindUser(id)
}
