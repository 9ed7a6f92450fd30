package services

import (
	"github.com/wfunc/worserver/config"
	"github.com/wfunc/worserver/logger"
	"github.com/wfunc/worserver/models"
	"github.com/wfunc/worserver/persistence"
)

// UserService manages the table's roster of pre-registered player ids.
// Only ids on the roster may join a game.
type UserService struct {
	db persistence.Database
}

func NewUserService(db persistence.Database) *UserService {
	return &UserService{db: db}
}

// EnsureRegistered seeds the roster from configuration. Existing ids keep
// their row, only the username is refreshed.
func (s *UserService) EnsureRegistered(users []config.RegisteredUser) error {
	for _, u := range users {
		if err := s.db.CreateUser(&models.User{ID: u.ID, Username: u.Username}); err != nil {
			return err
		}
		logger.Log.Infof("Registered player %s (%s)", u.ID, u.Username)
	}
	return nil
}

// GetUser looks up one registered player.
func (s *UserService) GetUser(id string) (*models.User, error) {
	return s.db.FindUser(id)
}

// ListUsers returns the whole roster.
func (s *UserService) ListUsers() ([]models.User, error) {
	return s.db.ListUsers()
}
