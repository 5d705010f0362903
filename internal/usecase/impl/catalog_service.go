package impl

import (
	"context"
	"log/slog"

	"biblio/internal/domain/entity"
	domainerrors "biblio/internal/domain/errors"
	"biblio/internal/domain/repository"
	"biblio/internal/domain/service"
	"biblio/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// catalogService implements the CatalogUsecase interface.
type catalogService struct {
	settings      service.EncryptionSettings
	cipherFactory service.CipherFactory
	userRepo      repository.UserRepository
	cardRepo      repository.CardRepository
	logger        *slog.Logger
}

// NewCatalogService is the constructor for catalogService.
func NewCatalogService(
	settings service.EncryptionSettings,
	cipherFactory service.CipherFactory,
	userRepo repository.UserRepository,
	cardRepo repository.CardRepository,
	logger *slog.Logger,
) usecase.CatalogUsecase {
	return &catalogService{
		settings:      settings,
		cipherFactory: cipherFactory,
		userRepo:      userRepo,
		cardRepo:      cardRepo,
		logger:        logger,
	}
}

// currentCipher builds the cipher for the scheme on file. Nil when
// encryption is disabled.
func (srv *catalogService) currentCipher() (service.Cipher, error) {
	setting, err := srv.settings.Current()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read encryption settings")
	}

	cipher, err := srv.cipherFactory(setting)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build configured cipher")
	}

	return cipher, nil
}

// sealSecret stores the password into the correct column pair for the
// configured scheme. An empty password clears both columns.
func sealSecret(cipher service.Cipher, password string) (raw, enc *string, err error) {
	if password == "" {
		return nil, nil, nil
	}
	if cipher == nil {
		return &password, nil, nil
	}

	encrypted, err := cipher.Encrypt(password)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to encrypt catalog password")
	}

	return nil, &encrypted, nil
}

// openSecret reads the password back from whichever column holds it.
func (srv *catalogService) openSecret(raw, enc *string) (string, error) {
	if enc != nil {
		cipher, err := srv.currentCipher()
		if err != nil {
			return "", err
		}
		if cipher == nil {
			return "", errors.New("stored catalog password is encrypted but encryption is disabled")
		}

		return cipher.Decrypt(*enc)
	}
	if raw != nil {
		return *raw, nil
	}

	return "", nil
}

// SaveCredentials stores the catalog login on the user account.
func (srv *catalogService) SaveCredentials(ctx context.Context, userID uuid.UUID, catalogUsername, catalogPassword string) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound.WrapMessage("cannot save catalog credentials")
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	cipher, err := srv.currentCipher()
	if err != nil {
		return nil, err
	}
	raw, enc, err := sealSecret(cipher, catalogPassword)
	if err != nil {
		return nil, err
	}

	user.CatalogUsername = catalogUsername
	user.RawPassword = raw
	user.PasswordEnc = enc

	if err := srv.userRepo.Update(ctx, user); err != nil {
		return nil, errors.Wrap(err, "failed to update user credentials")
	}
	srv.logger.Debug("Saved catalog credentials", slog.Any("user_id", user.ID))

	return user, nil
}

// SaveCardCredentials stores the catalog login on a library card.
func (srv *catalogService) SaveCardCredentials(ctx context.Context, cardID uuid.UUID, catalogUsername, catalogPassword string) (*entity.LibraryCard, error) {
	card, err := srv.cardRepo.FindByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, repository.ErrCardNotFound) {
			return nil, domainerrors.ErrNotFound.WrapMessage("cannot save card credentials")
		}

		return nil, errors.Wrap(err, "failed to find card")
	}

	cipher, err := srv.currentCipher()
	if err != nil {
		return nil, err
	}
	raw, enc, err := sealSecret(cipher, catalogPassword)
	if err != nil {
		return nil, err
	}

	card.CatalogUsername = catalogUsername
	card.RawPassword = raw
	card.PasswordEnc = enc

	if err := srv.cardRepo.Update(ctx, card); err != nil {
		return nil, errors.Wrap(err, "failed to update card credentials")
	}
	srv.logger.Debug("Saved card catalog credentials", slog.Any("card_id", card.ID))

	return card, nil
}

// CatalogPassword returns the user's catalog password in the clear.
func (srv *catalogService) CatalogPassword(user *entity.User) (string, error) {
	return srv.openSecret(user.RawPassword, user.PasswordEnc)
}

// CardPassword returns a card's catalog password in the clear.
func (srv *catalogService) CardPassword(card *entity.LibraryCard) (string, error) {
	return srv.openSecret(card.RawPassword, card.PasswordEnc)
}
