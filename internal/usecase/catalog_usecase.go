package usecase

import (
	"context"

	"biblio/internal/domain/entity"

	"github.com/google/uuid"
)

// CatalogUsecase manages the catalog (ILS) credentials stored on user
// accounts and library cards. Writes honor the currently configured
// protection scheme; reads transparently decrypt.
type CatalogUsecase interface {
	// SaveCredentials stores the catalog login on the user account,
	// encrypting the password when encryption is enabled and falling back to
	// the legacy plaintext column when it is not.
	SaveCredentials(ctx context.Context, userID uuid.UUID, catalogUsername, catalogPassword string) (*entity.User, error)

	// SaveCardCredentials stores the catalog login on a library card.
	SaveCardCredentials(ctx context.Context, cardID uuid.UUID, catalogUsername, catalogPassword string) (*entity.LibraryCard, error)

	// CatalogPassword returns the user's catalog password in the clear,
	// whichever column it lives in. Empty string when none is stored.
	CatalogPassword(user *entity.User) (string, error)

	// CardPassword returns a card's catalog password in the clear.
	CardPassword(card *entity.LibraryCard) (string, error)
}
