package model

import (
	"time"

	"github.com/google/uuid"
)

// LibraryCardModel mirrors the 'user_cards' table. UserID references users.id.
type LibraryCardModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index"`
	CardName string    `gorm:"type:varchar(255)"`

	CatUsername      string  `gorm:"type:varchar(50);index"`
	RawSavedPassword *string `gorm:"type:varchar(70)"`
	CatPassEnc       *string `gorm:"type:varchar(255)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (LibraryCardModel) TableName() string {
	return "user_cards"
}
