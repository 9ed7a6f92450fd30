package persistence

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/worserver/game"
	"github.com/wfunc/worserver/models"
)

// GormPostgreSQL is the GORM-backed storage implementation.
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL opens a pooled PostgreSQL connection and migrates the
// schema.
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&models.GormGame{},
		&models.GormUser{},
		&models.GormGameRecord{},
	); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// LoadCurrentGame returns the active game aggregate for a table.
func (p *GormPostgreSQL) LoadCurrentGame(tableID string) (*game.Game, error) {
	var row models.GormGame
	if err := p.db.Where("table_id = ?", tableID).First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	g := row.State
	return &g, nil
}

// SaveGame upserts the whole aggregate for a table in one transaction.
func (p *GormPostgreSQL) SaveGame(tableID string, g *game.Game) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		var row models.GormGame
		result := tx.Where("table_id = ?", tableID).First(&row)

		if result.Error == gorm.ErrRecordNotFound {
			row = models.GormGame{
				TableID: tableID,
				GameID:  g.ID,
				Phase:   string(g.Phase),
				Round:   g.CurrentRound,
				State:   *g,
			}
			return tx.Create(&row).Error
		} else if result.Error != nil {
			return result.Error
		}

		row.GameID = g.ID
		row.Phase = string(g.Phase)
		row.Round = g.CurrentRound
		row.State = *g
		return tx.Save(&row).Error
	})
}

// FindUser looks up a pre-registered player id.
func (p *GormPostgreSQL) FindUser(id string) (*models.User, error) {
	var row models.GormUser
	if err := p.db.Where("user_id = ?", id).First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return &models.User{
		ID:        row.UserID,
		Username:  row.Username,
		CreatedAt: row.CreatedAt,
	}, nil
}

// CreateUser registers a player id. Re-registering an existing id only
// refreshes the username.
func (p *GormPostgreSQL) CreateUser(u *models.User) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		var row models.GormUser
		result := tx.Where("user_id = ?", u.ID).First(&row)

		if result.Error == gorm.ErrRecordNotFound {
			return tx.Create(&models.GormUser{
				UserID:   u.ID,
				Username: u.Username,
			}).Error
		} else if result.Error != nil {
			return result.Error
		}

		row.Username = u.Username
		return tx.Save(&row).Error
	})
}

// ListUsers returns every registered player.
func (p *GormPostgreSQL) ListUsers() ([]models.User, error) {
	var rows []models.GormUser
	if err := p.db.Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, models.User{
			ID:        row.UserID,
			Username:  row.Username,
			CreatedAt: row.CreatedAt,
		})
	}
	return users, nil
}

// SaveGameRecord archives a finished game.
func (p *GormPostgreSQL) SaveGameRecord(rec *models.GameRecord) error {
	return p.db.Create(&models.GormGameRecord{
		GameID:  rec.GameID,
		TableID: rec.TableID,
		Rounds:  rec.Rounds,
		Results: rec.Results,
	}).Error
}

// Close closes the underlying connection pool.
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
