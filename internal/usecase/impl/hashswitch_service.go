package impl

import (
	"context"
	"log/slog"

	"biblio/internal/domain/entity"
	domainerrors "biblio/internal/domain/errors"
	"biblio/internal/domain/repository"
	"biblio/internal/domain/service"
	"biblio/internal/usecase"

	"github.com/pkg/errors"
)

// hashSwitchService implements the HashSwitchUsecase interface.
//
// Ordering is the whole point here: both ciphers are constructed before any
// persistent mutation, and the configuration is persisted before the first
// row is rewritten. If the process dies mid-batch the config names a key
// that can open everything already rewritten; the untouched rest is
// recovered by re-running with identical arguments.
type hashSwitchService struct {
	settings      service.EncryptionSettings
	cipherFactory service.CipherFactory
	userRepo      repository.UserRepository
	cardRepo      repository.CardRepository
	logger        *slog.Logger
}

// NewHashSwitchService is the constructor for hashSwitchService.
func NewHashSwitchService(
	settings service.EncryptionSettings,
	cipherFactory service.CipherFactory,
	userRepo repository.UserRepository,
	cardRepo repository.CardRepository,
	logger *slog.Logger,
) usecase.HashSwitchUsecase {
	return &hashSwitchService{
		settings:      settings,
		cipherFactory: cipherFactory,
		userRepo:      userRepo,
		cardRepo:      cardRepo,
		logger:        logger,
	}
}

// Switch migrates every stored catalog credential to the target scheme.
// A returned error means a fatal condition with zero rows written;
// per-record failures are collected in the result instead.
func (srv *hashSwitchService) Switch(ctx context.Context, input *usecase.SwitchInput) (*usecase.SwitchResult, error) {
	oldSetting, err := srv.settings.Current()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read current encryption settings")
	}

	newSetting, err := srv.resolveTarget(input, oldSetting)
	if err != nil {
		return nil, err
	}

	result := &usecase.SwitchResult{Old: oldSetting, New: newSetting}

	if oldSetting.Equal(newSetting) {
		srv.logger.Info("Target scheme equals current scheme, nothing to do",
			slog.Bool("enabled", newSetting.Enabled()),
			slog.String("algorithm", newSetting.Algorithm()))
		result.NoOp = true

		return result, nil
	}

	// Both ciphers must construct before anything is written.
	oldCipher, err := srv.cipherFactory(oldSetting)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build cipher for current scheme")
	}
	newCipher, err := srv.cipherFactory(newSetting)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build cipher for target scheme")
	}

	// Config first. After this point the stored configuration can read both
	// already-migrated and not-yet-migrated rows across a re-run.
	if err := srv.settings.Persist(newSetting); err != nil {
		return nil, domainerrors.ErrConfigWriteFailed.WrapMessage(err.Error())
	}
	srv.logger.Info("Persisted new encryption settings",
		slog.Bool("enabled", newSetting.Enabled()),
		slog.String("algorithm", newSetting.Algorithm()))

	if err := srv.migrateUsers(ctx, oldCipher, newCipher, result); err != nil {
		return nil, err
	}
	if err := srv.migrateCards(ctx, oldCipher, newCipher, result); err != nil {
		return nil, err
	}

	srv.logger.Info("Credential migration finished",
		slog.Int("users_migrated", result.Users.Migrated),
		slog.Int("cards_migrated", result.Cards.Migrated),
		slog.Int("failures", len(result.Failures)))

	return result, nil
}

// resolveTarget builds the target setting from the input, falling back to
// the currently configured key when none is supplied.
func (srv *hashSwitchService) resolveTarget(input *usecase.SwitchInput, old entity.EncryptionSetting) (entity.EncryptionSetting, error) {
	if input.Disable {
		return entity.EncryptionDisabled(), nil
	}

	key := input.Key
	if key == "" {
		key = old.Key()
	}
	if key == "" {
		return entity.EncryptionSetting{}, domainerrors.ErrEncryptionKeyMissing
	}

	return entity.EncryptionWith(input.Algorithm, key), nil
}

func (srv *hashSwitchService) migrateUsers(ctx context.Context, oldCipher, newCipher service.Cipher, result *usecase.SwitchResult) error {
	users, err := srv.userRepo.ListWithCatalogUsername(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to list users for migration")
	}
	srv.logger.Info("Migrating user credentials", slog.Int("count", len(users)))

	for _, user := range users {
		raw, enc, err := reencryptSecret(oldCipher, newCipher, user.RawPassword, user.PasswordEnc)
		if err == nil {
			user.RawPassword = raw
			user.PasswordEnc = enc
			err = srv.userRepo.Update(ctx, user)
		}
		if err != nil {
			srv.logger.Warn("Skipping user after migration failure",
				slog.Any("user_id", user.ID),
				slog.String("cat_username", user.CatalogUsername),
				slog.Any("error", err))
			result.Users.Failed++
			result.Failures = append(result.Failures, usecase.RecordFailure{
				Table:    usecase.TableUsers,
				ID:       user.ID,
				Username: user.CatalogUsername,
				Err:      err,
			})

			continue
		}
		result.Users.Migrated++
	}

	return nil
}

func (srv *hashSwitchService) migrateCards(ctx context.Context, oldCipher, newCipher service.Cipher, result *usecase.SwitchResult) error {
	cards, err := srv.cardRepo.ListWithCatalogUsername(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to list cards for migration")
	}
	srv.logger.Info("Migrating card credentials", slog.Int("count", len(cards)))

	for _, card := range cards {
		raw, enc, err := reencryptSecret(oldCipher, newCipher, card.RawPassword, card.PasswordEnc)
		if err == nil {
			card.RawPassword = raw
			card.PasswordEnc = enc
			err = srv.cardRepo.Update(ctx, card)
		}
		if err != nil {
			srv.logger.Warn("Skipping card after migration failure",
				slog.Any("card_id", card.ID),
				slog.String("cat_username", card.CatalogUsername),
				slog.Any("error", err))
			result.Cards.Failed++
			result.Failures = append(result.Failures, usecase.RecordFailure{
				Table:    usecase.TableCards,
				ID:       card.ID,
				Username: card.CatalogUsername,
				Err:      err,
			})

			continue
		}
		result.Cards.Migrated++
	}

	return nil
}

// reencryptSecret rewrites one credential pair from the old scheme to the
// new one. The plaintext is recovered from the encrypted column when the old
// scheme is enabled, otherwise from the legacy raw column; a nil cipher
// means the respective scheme stores plaintext.
func reencryptSecret(oldCipher, newCipher service.Cipher, raw, enc *string) (newRaw, newEnc *string, err error) {
	var plaintext *string
	switch {
	case oldCipher != nil && enc != nil:
		decrypted, err := oldCipher.Decrypt(*enc)
		if err != nil {
			return nil, nil, err
		}
		plaintext = &decrypted
	case raw != nil:
		value := *raw
		plaintext = &value
	}

	// No secret stored: both columns end up empty under any scheme.
	if plaintext == nil {
		return nil, nil, nil
	}

	if newCipher == nil {
		// Encryption turned off: the secret moves back to the legacy column.
		return plaintext, nil, nil
	}

	encrypted, err := newCipher.Encrypt(*plaintext)
	if err != nil {
		return nil, nil, err
	}

	return nil, &encrypted, nil
}
