// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"biblio/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the standard operations for user persistence.
// The application layer will depend on this interface, not the concrete implementation.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByUsername retrieves a single user by their local login name.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// FindByCatalogID retrieves a single user by their external catalog identifier.
	FindByCatalogID(ctx context.Context, catalogID string) (*entity.User, error)

	// ListWithCatalogUsername returns every user carrying a catalog login.
	// Only these records hold catalog credentials and are eligible for
	// credential re-encryption.
	ListWithCatalogUsername(ctx context.Context) ([]*entity.User, error)

	// Create persists a new user entity to the storage.
	Create(ctx context.Context, user *entity.User) error

	// Update modifies an existing user entity in the storage.
	Update(ctx context.Context, user *entity.User) error
}
