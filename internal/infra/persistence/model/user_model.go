// Package model holds the GORM persistence models mirroring the database
// schema. They are exported so the GORM Gen tool can consume them from cmd/gen.
package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel mirrors the 'users' table. PostgreSQL generates UUIDs via uuid_generate_v7().
type UserModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Username  string    `gorm:"type:varchar(255);unique;not null"`
	PassHash  string    `gorm:"type:varchar(60)"`
	Email     string    `gorm:"type:varchar(255)"`
	FirstName string    `gorm:"type:varchar(100)"`
	LastName  string    `gorm:"type:varchar(100)"`

	// Catalog (ILS) credential. CatUsername empty means no catalog account
	// is linked. RawCatPassword is the legacy plaintext column, CatPassEnc
	// the encrypted one; at most one is populated.
	CatID          string  `gorm:"type:varchar(255);index"`
	CatUsername    string  `gorm:"type:varchar(50);index"`
	RawCatPassword *string `gorm:"type:varchar(70)"`
	CatPassEnc     *string `gorm:"type:varchar(255)"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Cards []LibraryCardModel `gorm:"foreignKey:UserID"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
