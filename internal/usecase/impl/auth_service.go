package impl

import (
	"context"
	"log/slog"

	deliverycontext "biblio/internal/delivery/context"
	"biblio/internal/domain/entity"
	domainerrors "biblio/internal/domain/errors"
	"biblio/internal/domain/repository"
	"biblio/internal/domain/service"
	"biblio/internal/usecase"

	"github.com/pkg/errors"
)

// authService implements the AuthUsecase interface.
type authService struct {
	identity     usecase.IdentityUsecase
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService

	// privacyMode keeps user details out of server-side session storage:
	// only a snapshot lives in the session and nothing references the
	// database row. Off, the session stores the primary key instead.
	privacyMode bool

	logger *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(
	identity usecase.IdentityUsecase,
	userRepo repository.UserRepository,
	hasher service.PasswordHasher,
	tokenService service.TokenService,
	privacyMode bool,
	logger *slog.Logger,
) usecase.AuthUsecase {
	return &authService{
		identity:     identity,
		userRepo:     userRepo,
		hasher:       hasher,
		tokenService: tokenService,
		privacyMode:  privacyMode,
		logger:       logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a new patron account.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*entity.User, error) {
	srv.log(ctx).Info("Registering new account", slog.String("username", input.Username))

	existing, err := srv.identity.GetByField(ctx, usecase.FieldUsername, input.Username)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check username availability")
	}
	if existing != nil {
		return nil, domainerrors.ErrUserAlreadyExists.WrapMessage("registration failed")
	}

	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password during registration")
	}

	user := srv.identity.CreateIdentity()
	user.Username = input.Username
	user.PassHash = hash
	user.Email = input.Email
	user.FirstName = input.FirstName
	user.LastName = input.LastName

	if err := srv.userRepo.Create(ctx, user); err != nil {
		return nil, errors.Wrap(err, "failed to create user")
	}
	srv.log(ctx).Debug("Account registered", slog.Any("user_id", user.ID))

	return user, nil
}

// Login verifies the password, attaches the identity to the session and
// issues an access token for API clients.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	user, err := srv.identity.GetByField(ctx, usecase.FieldUsername, input.Username)
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up account")
	}
	if user == nil || !srv.hasher.Check(input.Password, user.PassHash) {
		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}

	if srv.privacyMode {
		err = srv.identity.AttachToSession(ctx, user)
	} else {
		err = srv.identity.AttachIDToSession(ctx, user.ID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to attach identity to session")
	}

	accessToken, err := srv.tokenService.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate access token")
	}
	srv.log(ctx).Debug("User logged in", slog.Any("user_id", user.ID))

	return &usecase.LoginOutput{AccessToken: accessToken, User: user}, nil
}

// Logout detaches any identity from the session.
func (srv *authService) Logout(ctx context.Context) error {
	if err := srv.identity.ClearSession(ctx); err != nil {
		return errors.Wrap(err, "failed to clear session")
	}

	return nil
}
