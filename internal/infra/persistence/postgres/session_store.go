package postgres

import (
	"context"

	"biblio/internal/domain/service"
	"biblio/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sessionStoreFactory binds database-backed session stores to concrete
// browser sessions.
type sessionStoreFactory struct {
	db *gorm.DB
}

// NewSessionStoreFactory is the constructor for sessionStoreFactory.
func NewSessionStoreFactory(db *gorm.DB) service.SessionStoreFactory {
	return &sessionStoreFactory{db: db}
}

// ForSession returns a SessionStore scoped to the given session ID.
func (f *sessionStoreFactory) ForSession(sessionID string) service.SessionStore {
	return &sessionStore{db: f.db, sessionID: sessionID}
}

// sessionStore persists named session slots as rows in session_data.
// It is request-scoped: one instance serves one request for one session.
type sessionStore struct {
	db        *gorm.DB
	sessionID string
}

// Get returns the value stored under name and whether the slot exists.
func (s *sessionStore) Get(ctx context.Context, name string) (string, bool, error) {
	var row model.SessionDataModel
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND slot = ?", s.sessionID, name).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}

		return "", false, errors.Wrap(err, "failed to read session slot")
	}

	return row.Value, true, nil
}

// Set stores a value under name, replacing any previous value.
func (s *sessionStore) Set(ctx context.Context, name, value string) error {
	row := model.SessionDataModel{
		SessionID: s.sessionID,
		Slot:      name,
		Value:     value,
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "slot"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return errors.Wrap(err, "failed to write session slot")
	}

	return nil
}

// Unset removes the slot. Removing an absent slot is not an error.
func (s *sessionStore) Unset(ctx context.Context, name string) error {
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND slot = ?", s.sessionID, name).
		Delete(&model.SessionDataModel{}).Error
	if err != nil {
		return errors.Wrap(err, "failed to delete session slot")
	}

	return nil
}
