package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"biblio/internal/domain/entity"
	domainerrors "biblio/internal/domain/errors"
	"biblio/internal/domain/repository"
	"biblio/internal/infra/crypto"
	"biblio/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHashSwitchService(settings *fakeSettings, users *fakeUserRepo, cards *fakeCardRepo) usecase.HashSwitchUsecase {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewHashSwitchService(settings, crypto.NewCipher, users, cards, logger)
}

func mustEncrypt(t *testing.T, setting entity.EncryptionSetting, plaintext string) string {
	t.Helper()
	cipher, err := crypto.NewCipher(setting)
	require.NoError(t, err)
	ciphertext, err := cipher.Encrypt(plaintext)
	require.NoError(t, err)

	return ciphertext
}

func mustDecrypt(t *testing.T, setting entity.EncryptionSetting, ciphertext string) string {
	t.Helper()
	cipher, err := crypto.NewCipher(setting)
	require.NoError(t, err)
	plaintext, err := cipher.Decrypt(ciphertext)
	require.NoError(t, err)

	return plaintext
}

func TestHashSwitchService_EnableEncryption(t *testing.T) {
	settings := &fakeSettings{setting: entity.EncryptionDisabled()}
	users := newFakeUserRepo()
	cards := newFakeCardRepo()

	alice := users.add(&entity.User{Username: "alice", CatalogUsername: "cat-alice", RawPassword: strPtr("pw-alice")})
	bob := users.add(&entity.User{Username: "bob", CatalogUsername: "cat-bob", RawPassword: strPtr("pw-bob")})
	// No catalog account linked: not eligible, must stay untouched.
	carol := users.add(&entity.User{Username: "carol"})
	card := cards.add(&entity.LibraryCard{UserID: alice.ID, CardName: "City Library", CatalogUsername: "cat-alice-2", RawPassword: strPtr("pw-card")})

	srv := newTestHashSwitchService(settings, users, cards)

	result, err := srv.Switch(context.Background(), &usecase.SwitchInput{Algorithm: crypto.AlgorithmAES, Key: "new-key"})
	require.NoError(t, err)

	assert.False(t, result.NoOp)
	assert.Equal(t, 2, result.Users.Migrated)
	assert.Equal(t, 1, result.Cards.Migrated)
	assert.Empty(t, result.Failures)

	target := entity.EncryptionWith(crypto.AlgorithmAES, "new-key")
	require.Len(t, settings.persisted, 1)
	assert.True(t, settings.persisted[0].Equal(target))

	for id, plaintext := range map[string]string{alice.ID.String(): "pw-alice", bob.ID.String(): "pw-bob"} {
		for _, user := range users.users {
			if user.ID.String() != id {
				continue
			}
			assert.Nil(t, user.RawPassword)
			require.NotNil(t, user.PasswordEnc)
			assert.Equal(t, plaintext, mustDecrypt(t, target, *user.PasswordEnc))
		}
	}

	migratedCard := cards.cards[card.ID]
	assert.Nil(t, migratedCard.RawPassword)
	require.NotNil(t, migratedCard.PasswordEnc)
	assert.Equal(t, "pw-card", mustDecrypt(t, target, *migratedCard.PasswordEnc))

	untouched := users.users[carol.ID]
	assert.Nil(t, untouched.RawPassword)
	assert.Nil(t, untouched.PasswordEnc)
}

func TestHashSwitchService_SwitchAlgorithmAndKey(t *testing.T) {
	old := entity.EncryptionWith(crypto.AlgorithmBlowfish, "old-key")
	settings := &fakeSettings{setting: old}
	users := newFakeUserRepo()
	cards := newFakeCardRepo()

	user := users.add(&entity.User{
		Username:        "alice",
		CatalogUsername: "cat-alice",
	})
	enc := mustEncrypt(t, old, "pw-alice")
	user.PasswordEnc = &enc

	srv := newTestHashSwitchService(settings, users, cards)

	result, err := srv.Switch(context.Background(), &usecase.SwitchInput{Algorithm: crypto.AlgorithmAES, Key: "new-key"})
	require.NoError(t, err)
	assert.False(t, result.NoOp)
	assert.Equal(t, 1, result.Users.Migrated)

	target := entity.EncryptionWith(crypto.AlgorithmAES, "new-key")
	migrated := users.users[user.ID]
	assert.Nil(t, migrated.RawPassword)
	require.NotNil(t, migrated.PasswordEnc)
	assert.NotEqual(t, enc, *migrated.PasswordEnc)
	assert.Equal(t, "pw-alice", mustDecrypt(t, target, *migrated.PasswordEnc))
}

func TestHashSwitchService_KeyFallsBackToConfigured(t *testing.T) {
	old := entity.EncryptionWith(crypto.AlgorithmAES, "shared-key")
	settings := &fakeSettings{setting: old}
	users := newFakeUserRepo()

	user := users.add(&entity.User{Username: "alice", CatalogUsername: "cat-alice"})
	enc := mustEncrypt(t, old, "pw-alice")
	user.PasswordEnc = &enc

	srv := newTestHashSwitchService(settings, users, newFakeCardRepo())

	result, err := srv.Switch(context.Background(), &usecase.SwitchInput{Algorithm: crypto.AlgorithmBlowfish})
	require.NoError(t, err)

	target := entity.EncryptionWith(crypto.AlgorithmBlowfish, "shared-key")
	assert.True(t, result.New.Equal(target))
	migrated := users.users[user.ID]
	require.NotNil(t, migrated.PasswordEnc)
	assert.Equal(t, "pw-alice", mustDecrypt(t, target, *migrated.PasswordEnc))
}

func TestHashSwitchService_DisableEncryption(t *testing.T) {
	old := entity.EncryptionWith(crypto.AlgorithmAES, "old-key")
	settings := &fakeSettings{setting: old}
	users := newFakeUserRepo()

	user := users.add(&entity.User{Username: "alice", CatalogUsername: "cat-alice"})
	enc := mustEncrypt(t, old, "pw-alice")
	user.PasswordEnc = &enc

	srv := newTestHashSwitchService(settings, users, newFakeCardRepo())

	result, err := srv.Switch(context.Background(), &usecase.SwitchInput{Disable: true})
	require.NoError(t, err)
	assert.False(t, result.NoOp)

	require.Len(t, settings.persisted, 1)
	assert.False(t, settings.persisted[0].Enabled())

	migrated := users.users[user.ID]
	assert.Nil(t, migrated.PasswordEnc)
	require.NotNil(t, migrated.RawPassword)
	assert.Equal(t, "pw-alice", *migrated.RawPassword)
}

func TestHashSwitchService_NoOp(t *testing.T) {
	current := entity.EncryptionWith(crypto.AlgorithmAES, "key")
	settings := &fakeSettings{setting: current}
	users := newFakeUserRepo()

	user := users.add(&entity.User{Username: "alice", CatalogUsername: "cat-alice"})
	enc := mustEncrypt(t, current, "pw-alice")
	user.PasswordEnc = &enc

	srv := newTestHashSwitchService(settings, users, newFakeCardRepo())

	result, err := srv.Switch(context.Background(), &usecase.SwitchInput{Algorithm: crypto.AlgorithmAES, Key: "key"})
	require.NoError(t, err)

	assert.True(t, result.NoOp)
	assert.Empty(t, settings.persisted)
	assert.Empty(t, users.updates)
	assert.Equal(t, enc, *users.users[user.ID].PasswordEnc)
}

func TestHashSwitchService_DisabledToDisabledIsNoOp(t *testing.T) {
	settings := &fakeSettings{setting: entity.EncryptionDisabled()}
	srv := newTestHashSwitchService(settings, newFakeUserRepo(), newFakeCardRepo())

	result, err := srv.Switch(context.Background(), &usecase.SwitchInput{Disable: true})
	require.NoError(t, err)
	assert.True(t, result.NoOp)
	assert.Empty(t, settings.persisted)
}

func TestHashSwitchService_MissingKeyIsFatal(t *testing.T) {
	settings := &fakeSettings{setting: entity.EncryptionDisabled()}
	users := newFakeUserRepo()
	user := users.add(&entity.User{Username: "alice", CatalogUsername: "cat-alice", RawPassword: strPtr("pw")})

	srv := newTestHashSwitchService(settings, users, newFakeCardRepo())

	_, err := srv.Switch(context.Background(), &usecase.SwitchInput{Algorithm: crypto.AlgorithmAES})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrEncryptionKeyMissing)

	// Nothing was written.
	assert.Empty(t, settings.persisted)
	assert.Empty(t, users.updates)
	require.NotNil(t, users.users[user.ID].RawPassword)
}

func TestHashSwitchService_UnsupportedAlgorithmIsFatal(t *testing.T) {
	settings := &fakeSettings{setting: entity.EncryptionDisabled()}
	users := newFakeUserRepo()
	users.add(&entity.User{Username: "alice", CatalogUsername: "cat-alice", RawPassword: strPtr("pw")})

	srv := newTestHashSwitchService(settings, users, newFakeCardRepo())

	_, err := srv.Switch(context.Background(), &usecase.SwitchInput{Algorithm: "rot13", Key: "key"})
	require.Error(t, err)
	assert.ErrorIs(t, err, crypto.ErrUnsupportedAlgorithm)
	assert.Empty(t, settings.persisted)
	assert.Empty(t, users.updates)
}

func TestHashSwitchService_ConfigWriteFailureIsFatal(t *testing.T) {
	settings := &fakeSettings{
		setting:    entity.EncryptionDisabled(),
		persistErr: errors.New("disk full"),
	}
	users := newFakeUserRepo()
	users.add(&entity.User{Username: "alice", CatalogUsername: "cat-alice", RawPassword: strPtr("pw")})

	srv := newTestHashSwitchService(settings, users, newFakeCardRepo())

	_, err := srv.Switch(context.Background(), &usecase.SwitchInput{Algorithm: crypto.AlgorithmAES, Key: "key"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrConfigWriteFailed)
	assert.Empty(t, users.updates)
}

// orderCheckingUserRepo fails the test if a row is written before the new
// settings have been persisted.
type orderCheckingUserRepo struct {
	*fakeUserRepo

	t        *testing.T
	settings *fakeSettings
}

func (r *orderCheckingUserRepo) Update(ctx context.Context, user *entity.User) error {
	require.NotEmpty(r.t, r.settings.persisted, "row written before configuration")

	return r.fakeUserRepo.Update(ctx, user)
}

func TestHashSwitchService_ConfigPersistedBeforeRows(t *testing.T) {
	settings := &fakeSettings{setting: entity.EncryptionDisabled()}
	users := newFakeUserRepo()
	users.add(&entity.User{Username: "alice", CatalogUsername: "cat-alice", RawPassword: strPtr("pw")})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	checked := &orderCheckingUserRepo{fakeUserRepo: users, t: t, settings: settings}
	srv := NewHashSwitchService(settings, crypto.NewCipher, checked, newFakeCardRepo(), logger)

	_, err := srv.Switch(context.Background(), &usecase.SwitchInput{Algorithm: crypto.AlgorithmAES, Key: "key"})
	require.NoError(t, err)
	assert.NotEmpty(t, users.updates)
}

func TestHashSwitchService_PerRecordFailureIsolation(t *testing.T) {
	old := entity.EncryptionWith(crypto.AlgorithmAES, "old-key")
	settings := &fakeSettings{setting: old}
	users := newFakeUserRepo()
	cards := newFakeCardRepo()

	good := users.add(&entity.User{Username: "good", CatalogUsername: "cat-good"})
	goodEnc := mustEncrypt(t, old, "pw-good")
	good.PasswordEnc = &goodEnc

	// Ciphertext no key can open.
	corrupt := users.add(&entity.User{Username: "corrupt", CatalogUsername: "cat-corrupt", PasswordEnc: strPtr("@@@not-base64@@@")})

	stubborn := users.add(&entity.User{Username: "stubborn", CatalogUsername: "cat-stubborn", RawPassword: strPtr("pw")})
	users.updateErrs[stubborn.ID] = errors.New("row locked")

	srv := newTestHashSwitchService(settings, users, cards)

	result, err := srv.Switch(context.Background(), &usecase.SwitchInput{Algorithm: crypto.AlgorithmAES, Key: "new-key"})
	require.NoError(t, err, "per-record failures must not abort the run")

	assert.Equal(t, 1, result.Users.Migrated)
	assert.Equal(t, 2, result.Users.Failed)
	require.Len(t, result.Failures, 2)
	for _, failure := range result.Failures {
		assert.Equal(t, usecase.TableUsers, failure.Table)
		assert.Contains(t, []string{"cat-corrupt", "cat-stubborn"}, failure.Username)
		assert.Error(t, failure.Err)
	}

	// The good record still migrated.
	target := entity.EncryptionWith(crypto.AlgorithmAES, "new-key")
	require.NotNil(t, users.users[good.ID].PasswordEnc)
	assert.Equal(t, "pw-good", mustDecrypt(t, target, *users.users[good.ID].PasswordEnc))

	// The corrupt ciphertext is left as it was.
	require.NotNil(t, users.users[corrupt.ID].PasswordEnc)
	assert.Equal(t, "@@@not-base64@@@", *users.users[corrupt.ID].PasswordEnc)
}

func TestHashSwitchService_RerunAfterPartialFailure(t *testing.T) {
	settings := &fakeSettings{setting: entity.EncryptionDisabled()}
	users := newFakeUserRepo()

	ok := users.add(&entity.User{Username: "ok", CatalogUsername: "cat-ok", RawPassword: strPtr("pw-ok")})
	flaky := users.add(&entity.User{Username: "flaky", CatalogUsername: "cat-flaky", RawPassword: strPtr("pw-flaky")})
	users.updateErrs[flaky.ID] = errors.New("deadlock")

	srv := newTestHashSwitchService(settings, users, newFakeCardRepo())
	input := &usecase.SwitchInput{Algorithm: crypto.AlgorithmAES, Key: "key"}

	first, err := srv.Switch(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Users.Migrated)
	assert.Equal(t, 1, first.Users.Failed)

	// The configuration was persisted on the first run, so an identical
	// re-run matches the stored scheme and short-circuits as a no-op
	// without touching any row.
	delete(users.updateErrs, flaky.ID)
	writesAfterFirst := len(users.updates)

	second, err := srv.Switch(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, second.NoOp)
	assert.Zero(t, second.Users.Migrated)
	assert.Empty(t, second.Failures)
	assert.Len(t, users.updates, writesAfterFirst, "no-op run must not write rows")

	// Recovering the straggler takes a genuine scheme change: the leftover
	// row still carries its plaintext, the migrated row re-encrypts.
	third, err := srv.Switch(context.Background(), &usecase.SwitchInput{Algorithm: crypto.AlgorithmAES, Key: "rotated-key"})
	require.NoError(t, err)
	assert.False(t, third.NoOp)
	assert.Equal(t, 2, third.Users.Migrated)
	assert.Empty(t, third.Failures)

	target := entity.EncryptionWith(crypto.AlgorithmAES, "rotated-key")
	for _, expect := range []struct {
		id   uuid.UUID
		want string
	}{
		{ok.ID, "pw-ok"},
		{flaky.ID, "pw-flaky"},
	} {
		user := users.users[expect.id]
		require.NotNil(t, user)
		assert.Nil(t, user.RawPassword)
		require.NotNil(t, user.PasswordEnc)
		assert.Equal(t, expect.want, mustDecrypt(t, target, *user.PasswordEnc))
	}
}

func TestHashSwitchService_ListFailureIsFatal(t *testing.T) {
	settings := &fakeSettings{setting: entity.EncryptionDisabled()}
	users := newFakeUserRepo()
	users.listErr = errors.New("relation does not exist")

	srv := newTestHashSwitchService(settings, users, newFakeCardRepo())

	_, err := srv.Switch(context.Background(), &usecase.SwitchInput{Algorithm: crypto.AlgorithmAES, Key: "key"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relation does not exist")
}

func TestHashSwitchService_SettingsReadFailure(t *testing.T) {
	settings := &fakeSettings{currentErr: errors.New("config file unreadable")}
	srv := newTestHashSwitchService(settings, newFakeUserRepo(), newFakeCardRepo())

	_, err := srv.Switch(context.Background(), &usecase.SwitchInput{Disable: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file unreadable")
}

func TestReencryptSecret(t *testing.T) {
	aes, err := crypto.NewCipher(entity.EncryptionWith(crypto.AlgorithmAES, "k1"))
	require.NoError(t, err)
	blowfish, err := crypto.NewCipher(entity.EncryptionWith(crypto.AlgorithmBlowfish, "k2"))
	require.NoError(t, err)

	t.Run("no secret stored", func(t *testing.T) {
		raw, enc, err := reencryptSecret(nil, aes, nil, nil)
		require.NoError(t, err)
		assert.Nil(t, raw)
		assert.Nil(t, enc)
	})

	t.Run("plaintext to cipher", func(t *testing.T) {
		raw, enc, err := reencryptSecret(nil, aes, strPtr("secret"), nil)
		require.NoError(t, err)
		assert.Nil(t, raw)
		require.NotNil(t, enc)

		decrypted, err := aes.Decrypt(*enc)
		require.NoError(t, err)
		assert.Equal(t, "secret", decrypted)
	})

	t.Run("cipher to cipher", func(t *testing.T) {
		sealed, err := blowfish.Encrypt("secret")
		require.NoError(t, err)

		raw, enc, err := reencryptSecret(blowfish, aes, nil, &sealed)
		require.NoError(t, err)
		assert.Nil(t, raw)
		require.NotNil(t, enc)

		decrypted, err := aes.Decrypt(*enc)
		require.NoError(t, err)
		assert.Equal(t, "secret", decrypted)
	})

	t.Run("cipher to plaintext", func(t *testing.T) {
		sealed, err := aes.Encrypt("secret")
		require.NoError(t, err)

		raw, enc, err := reencryptSecret(aes, nil, nil, &sealed)
		require.NoError(t, err)
		assert.Nil(t, enc)
		require.NotNil(t, raw)
		assert.Equal(t, "secret", *raw)
	})

	t.Run("leftover plaintext under enabled scheme", func(t *testing.T) {
		// A row missed by an earlier enable run still carries plaintext.
		raw, enc, err := reencryptSecret(aes, blowfish, strPtr("secret"), nil)
		require.NoError(t, err)
		assert.Nil(t, raw)
		require.NotNil(t, enc)

		decrypted, err := blowfish.Decrypt(*enc)
		require.NoError(t, err)
		assert.Equal(t, "secret", decrypted)
	})

	t.Run("undecryptable ciphertext", func(t *testing.T) {
		sealed, err := aes.Encrypt("secret")
		require.NoError(t, err)

		_, _, err = reencryptSecret(blowfish, aes, nil, &sealed)
		require.Error(t, err)

		var decryptErr *crypto.DecryptError
		assert.ErrorAs(t, err, &decryptErr)
	})
}

var _ repository.UserRepository = (*orderCheckingUserRepo)(nil)
