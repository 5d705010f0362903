package entity

import (
	"time"

	"github.com/google/uuid"
)

// LibraryCard represents an additional catalog account linked to a user.
// A patron may hold several cards, each with its own catalog credential
// stored the same way as on the User entity: legacy plaintext or encrypted,
// never both.
type LibraryCard struct {
	ID       uuid.UUID // The unique identifier for the card.
	UserID   uuid.UUID // Links this card to the owning User.
	CardName string    // A user-chosen label, e.g. "City Library".

	CatalogUsername string  // The card's login name in the external catalog.
	RawPassword     *string // Legacy plaintext catalog password. Cleared once encryption is adopted.
	PasswordEnc     *string // Encrypted catalog password (base64 ciphertext).

	CreatedAt time.Time
	UpdatedAt time.Time
}
