package services

import (
	"github.com/wfunc/worserver/logger"
	"github.com/wfunc/worserver/models"
	"github.com/wfunc/worserver/persistence"
)

// RecordService archives finished games. It sits between the engine and
// the database so archiving gets logged in one place.
type RecordService struct {
	db persistence.Database
}

func NewRecordService(db persistence.Database) *RecordService {
	return &RecordService{db: db}
}

// SaveGameRecord persists the final ranking of a finished game.
func (s *RecordService) SaveGameRecord(rec *models.GameRecord) error {
	if err := s.db.SaveGameRecord(rec); err != nil {
		return err
	}
	logger.Log.Infof("Archived game %s on table %s after %d rounds", rec.GameID, rec.TableID, rec.Rounds)
	return nil
}
