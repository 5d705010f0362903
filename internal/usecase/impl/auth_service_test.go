package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"biblio/config"
	domainerrors "biblio/internal/domain/errors"
	"biblio/internal/domain/service"
	"biblio/internal/infra/auth"
	"biblio/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(t *testing.T, repo *fakeUserRepo, privacyMode bool) usecase.AuthUsecase {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	identity := NewIdentityService(repo, logger)

	cfg := &config.Config{}
	cfg.SecretKey.Access = "test-secret"
	tokenService, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	return NewAuthService(identity, repo, auth.NewBcryptHasher(), tokenService, privacyMode, logger)
}

func registerTestUser(t *testing.T, srv usecase.AuthUsecase, username, password string) {
	t.Helper()
	_, err := srv.Register(context.Background(), &usecase.RegisterInput{
		Username:  username,
		Password:  password,
		Email:     username + "@example.org",
		FirstName: "Test",
		LastName:  "Patron",
	})
	require.NoError(t, err)
}

func TestAuthService_Register(t *testing.T) {
	repo := newFakeUserRepo()
	srv := newTestAuthService(t, repo, false)

	user, err := srv.Register(context.Background(), &usecase.RegisterInput{
		Username: "jdoe",
		Password: "correct horse",
		Email:    "jdoe@example.org",
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotEmpty(t, user.ID)
	assert.NotEmpty(t, user.PassHash)
	assert.NotEqual(t, "correct horse", user.PassHash)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	repo := newFakeUserRepo()
	srv := newTestAuthService(t, repo, false)
	registerTestUser(t, srv, "jdoe", "pw")

	_, err := srv.Register(context.Background(), &usecase.RegisterInput{Username: "jdoe", Password: "other"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists)
}

func TestAuthService_Login_AttachesIDByDefault(t *testing.T) {
	repo := newFakeUserRepo()
	srv := newTestAuthService(t, repo, false)
	registerTestUser(t, srv, "jdoe", "correct horse")

	store := newMemSessionStore()
	ctx := sessionContext(store)

	out, err := srv.Login(ctx, &usecase.LoginInput{Username: "jdoe", Password: "correct horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.AccessToken)
	require.NotNil(t, out.User)

	_, hasID := store.values[service.SessionSlotUserID]
	_, hasSnapshot := store.values[service.SessionSlotUserDetails]
	assert.True(t, hasID)
	assert.False(t, hasSnapshot)
}

func TestAuthService_Login_PrivacyModeStoresSnapshot(t *testing.T) {
	repo := newFakeUserRepo()
	srv := newTestAuthService(t, repo, true)
	registerTestUser(t, srv, "jdoe", "correct horse")

	store := newMemSessionStore()
	ctx := sessionContext(store)

	_, err := srv.Login(ctx, &usecase.LoginInput{Username: "jdoe", Password: "correct horse"})
	require.NoError(t, err)

	_, hasID := store.values[service.SessionSlotUserID]
	snapshot, hasSnapshot := store.values[service.SessionSlotUserDetails]
	assert.False(t, hasID)
	assert.True(t, hasSnapshot)
	assert.NotContains(t, snapshot, "correct horse")
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	srv := newTestAuthService(t, repo, false)
	registerTestUser(t, srv, "jdoe", "correct horse")

	ctx := sessionContext(newMemSessionStore())

	_, err := srv.Login(ctx, &usecase.LoginInput{Username: "jdoe", Password: "wrong"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	srv := newTestAuthService(t, newFakeUserRepo(), false)
	ctx := sessionContext(newMemSessionStore())

	_, err := srv.Login(ctx, &usecase.LoginInput{Username: "nobody", Password: "pw"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_Logout(t *testing.T) {
	repo := newFakeUserRepo()
	srv := newTestAuthService(t, repo, false)
	registerTestUser(t, srv, "jdoe", "pw")

	store := newMemSessionStore()
	ctx := sessionContext(store)

	_, err := srv.Login(ctx, &usecase.LoginInput{Username: "jdoe", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, srv.Logout(ctx))
	assert.Empty(t, store.values)
}
