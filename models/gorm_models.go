package models

import (
	"gorm.io/gorm"

	"github.com/wfunc/worserver/game"
)

// GormGame holds the serialized game aggregate, one row per table.
type GormGame struct {
	gorm.Model
	TableID string    `gorm:"uniqueIndex;not null"`
	GameID  string    `gorm:"index;not null"`
	Phase   string    `gorm:"not null"`
	Round   int       `gorm:"default:0"`
	State   game.Game `gorm:"type:jsonb;serializer:json;not null"`
}

// GormUser is a pre-registered player identity.
type GormUser struct {
	gorm.Model
	UserID   string `gorm:"uniqueIndex;not null"`
	Username string `gorm:"not null"`
}

// GormGameRecord archives the final ranking of a finished game.
type GormGameRecord struct {
	gorm.Model
	GameID  string         `gorm:"index;not null"`
	TableID string         `gorm:"index;not null"`
	Rounds  int            `gorm:"default:0"`
	Results []PlayerResult `gorm:"type:jsonb;serializer:json;not null"`
}
