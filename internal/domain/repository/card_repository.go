package repository

import (
	"context"
	"errors"

	"biblio/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrCardNotFound is a domain-specific error returned when a library card is not found.
var ErrCardNotFound = errors.New("library card not found")

// CardRepository defines the standard operations for library card persistence.
type CardRepository interface {
	// FindByID retrieves a single card by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.LibraryCard, error)

	// FindByUserID retrieves all cards belonging to the given user.
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.LibraryCard, error)

	// ListWithCatalogUsername returns every card carrying a catalog login,
	// the eligibility filter for credential re-encryption.
	ListWithCatalogUsername(ctx context.Context) ([]*entity.LibraryCard, error)

	// Create persists a new card entity to the storage.
	Create(ctx context.Context, card *entity.LibraryCard) error

	// Update modifies an existing card entity in the storage.
	Update(ctx context.Context, card *entity.LibraryCard) error
}
