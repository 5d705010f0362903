package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionDataModel mirrors the 'session_data' table: one row per named slot
// of a browser session.
type SessionDataModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	SessionID string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_session_slot,priority:1"`
	Slot      string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_session_slot,priority:2"`
	Value     string    `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (SessionDataModel) TableName() string {
	return "session_data"
}
