// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core entity in the system, representing a patron account.
// Besides the local account identity it optionally carries the patron's
// credential for the external library catalog (ILS): the catalog username
// plus either a legacy plaintext password or an encrypted one, never both.
type User struct {
	ID        uuid.UUID // The unique identifier for the user.
	Username  string    // The local login name, unique across the system.
	PassHash  string    // Bcrypt hash of the local account password. Never serialized.
	Email     string    // The user's contact email address.
	FirstName string    // The user's given name.
	LastName  string    // The user's family name.

	CatalogID       string  // The patron's identifier in the external catalog, e.g. a barcode.
	CatalogUsername string  // The patron's login name in the external catalog. Empty when no catalog account is linked.
	RawPassword     *string // Legacy plaintext catalog password. Cleared once encryption is adopted.
	PasswordEnc     *string // Encrypted catalog password (base64 ciphertext). Nil when encryption is off or no secret is stored.

	CreatedAt time.Time // Timestamp of when this account was created.
	UpdatedAt time.Time // Timestamp of the last modification to this account.
}

// HasCatalogCredential reports whether the user carries a catalog login at all.
func (u *User) HasCatalogCredential() bool {
	return u.CatalogUsername != ""
}

// SnapshotVersion identifies the layout of UserSnapshot persisted into
// session storage. Bump it when fields are added or renamed so stale
// sessions are discarded instead of silently misread.
const SnapshotVersion = 1

// UserSnapshot is the explicit field set captured into session storage for
// privacy-preserving flows. It deliberately excludes the catalog password
// fields: secrets never enter the session store.
type UserSnapshot struct {
	Version         int       `json:"version"`
	ID              uuid.UUID `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	CatalogID       string    `json:"catalogId"`
	CatalogUsername string    `json:"catalogUsername"`
}

// Snapshot captures the session-safe fields of the user.
func (u *User) Snapshot() UserSnapshot {
	return UserSnapshot{
		Version:         SnapshotVersion,
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		CatalogID:       u.CatalogID,
		CatalogUsername: u.CatalogUsername,
	}
}

// UserFromSnapshot rebuilds a detached User from a session snapshot.
// The result is not backed by a storage row and carries no secrets.
func UserFromSnapshot(snap UserSnapshot) *User {
	return &User{
		ID:              snap.ID,
		Username:        snap.Username,
		Email:           snap.Email,
		FirstName:       snap.FirstName,
		LastName:        snap.LastName,
		CatalogID:       snap.CatalogID,
		CatalogUsername: snap.CatalogUsername,
	}
}
