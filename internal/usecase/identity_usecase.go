// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"biblio/internal/domain/entity"

	"github.com/google/uuid"
)

// Lookup field names accepted by GetByField.
const (
	FieldID        = "id"
	FieldUsername  = "username"
	FieldCatalogID = "catalogId"
)

// IdentityUsecase resolves the current patron identity. Lookups go against
// storage; the session-bound operations read and write the two identity slots
// of the browser session carried in the request context.
type IdentityUsecase interface {
	// GetByID retrieves a user by primary key. Returns (nil, nil) when no
	// such user exists; lookups distinguish absence from failure.
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// GetByField retrieves a user by one of the supported lookup fields
	// (FieldID, FieldUsername, FieldCatalogID). Any other field name yields
	// ErrInvalidFieldName. Absence is (nil, nil), as with GetByID.
	GetByField(ctx context.Context, field, value string) (*entity.User, error)

	// AttachToSession marks the user as logged in by storing a versioned
	// snapshot of their non-secret fields in the session. A nil user cannot
	// be attached.
	AttachToSession(ctx context.Context, user *entity.User) error

	// AttachIDToSession marks the user as logged in by primary key reference
	// only. Resolution will re-read the account from storage on demand.
	AttachIDToSession(ctx context.Context, id uuid.UUID) error

	// ClearSession logs the session out. Clearing a session with no attached
	// identity is not an error.
	ClearSession(ctx context.Context) error

	// HasSessionIdentity reports whether the session carries an identity,
	// without touching storage.
	HasSessionIdentity(ctx context.Context) (bool, error)

	// ResolveFromSession returns the logged-in user, or (nil, nil) when the
	// session carries no identity. An ID reference takes precedence over a
	// stored snapshot; the snapshot path yields a detached entity without
	// any credential fields.
	ResolveFromSession(ctx context.Context) (*entity.User, error)

	// CreateIdentity returns a fresh, unpersisted user instance. The caller
	// fills it in and hands it to the repository.
	CreateIdentity() *entity.User
}
