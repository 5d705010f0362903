// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"encoding/json"
	"log/slog"

	deliverycontext "biblio/internal/delivery/context"
	"biblio/internal/domain/entity"
	domainerrors "biblio/internal/domain/errors"
	"biblio/internal/domain/repository"
	"biblio/internal/domain/service"
	"biblio/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// identityService implements the IdentityUsecase interface.
type identityService struct {
	userRepo repository.UserRepository
	logger   *slog.Logger
}

// NewIdentityService is the constructor for identityService.
func NewIdentityService(
	userRepo repository.UserRepository,
	logger *slog.Logger,
) usecase.IdentityUsecase {
	return &identityService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *identityService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetByID retrieves a user by primary key. Absence is (nil, nil).
func (srv *identityService) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return user, nil
}

// GetByField retrieves a user by one of the supported lookup fields.
func (srv *identityService) GetByField(ctx context.Context, field, value string) (*entity.User, error) {
	var (
		user *entity.User
		err  error
	)

	switch field {
	case usecase.FieldID:
		id, parseErr := uuid.Parse(value)
		if parseErr != nil {
			// A malformed id cannot match any row.
			return nil, nil
		}
		user, err = srv.userRepo.FindByID(ctx, id)
	case usecase.FieldUsername:
		user, err = srv.userRepo.FindByUsername(ctx, value)
	case usecase.FieldCatalogID:
		user, err = srv.userRepo.FindByCatalogID(ctx, value)
	default:
		return nil, domainerrors.ErrInvalidFieldName.WrapMessage("field " + field)
	}

	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil
		}

		return nil, errors.Wrapf(err, "failed to find user by %s", field)
	}

	return user, nil
}

// AttachToSession stores a versioned snapshot of the user in the session.
func (srv *identityService) AttachToSession(ctx context.Context, user *entity.User) error {
	if user == nil {
		return domainerrors.ErrUnsupportedIdentityType.WrapMessage("cannot attach nil user")
	}

	store := deliverycontext.GetSessionStore(ctx)
	if store == nil {
		return errors.Wrap(domainerrors.ErrNoSession, "cannot attach identity")
	}

	payload, err := json.Marshal(user.Snapshot())
	if err != nil {
		return domainerrors.ErrUnsupportedIdentityType.WrapMessage(err.Error())
	}

	if err := store.Set(ctx, service.SessionSlotUserDetails, string(payload)); err != nil {
		return errors.Wrap(err, "failed to store user snapshot in session")
	}
	srv.log(ctx).Debug("Attached user snapshot to session", slog.Any("user_id", user.ID))

	return nil
}

// AttachIDToSession stores the user's primary key in the session.
func (srv *identityService) AttachIDToSession(ctx context.Context, id uuid.UUID) error {
	store := deliverycontext.GetSessionStore(ctx)
	if store == nil {
		return errors.Wrap(domainerrors.ErrNoSession, "cannot attach identity")
	}

	if err := store.Set(ctx, service.SessionSlotUserID, id.String()); err != nil {
		return errors.Wrap(err, "failed to store user id in session")
	}
	srv.log(ctx).Debug("Attached user id to session", slog.Any("user_id", id))

	return nil
}

// ClearSession removes both identity slots. Idempotent.
func (srv *identityService) ClearSession(ctx context.Context) error {
	store := deliverycontext.GetSessionStore(ctx)
	if store == nil {
		return nil
	}

	if err := store.Unset(ctx, service.SessionSlotUserID); err != nil {
		return errors.Wrap(err, "failed to clear user id from session")
	}
	if err := store.Unset(ctx, service.SessionSlotUserDetails); err != nil {
		return errors.Wrap(err, "failed to clear user snapshot from session")
	}

	return nil
}

// HasSessionIdentity reports whether either identity slot is populated.
func (srv *identityService) HasSessionIdentity(ctx context.Context) (bool, error) {
	store := deliverycontext.GetSessionStore(ctx)
	if store == nil {
		return false, nil
	}

	if _, ok, err := store.Get(ctx, service.SessionSlotUserID); err != nil {
		return false, errors.Wrap(err, "failed to read user id slot")
	} else if ok {
		return true, nil
	}

	_, ok, err := store.Get(ctx, service.SessionSlotUserDetails)
	if err != nil {
		return false, errors.Wrap(err, "failed to read user snapshot slot")
	}

	return ok, nil
}

// ResolveFromSession returns the logged-in user, or (nil, nil) when the
// session carries no identity. The id slot wins over the snapshot slot.
func (srv *identityService) ResolveFromSession(ctx context.Context) (*entity.User, error) {
	store := deliverycontext.GetSessionStore(ctx)
	if store == nil {
		return nil, nil
	}

	rawID, ok, err := store.Get(ctx, service.SessionSlotUserID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read user id slot")
	}
	if ok {
		id, parseErr := uuid.Parse(rawID)
		if parseErr != nil {
			// Corrupt slot. Treat the session as logged out rather than
			// failing every request it makes.
			srv.log(ctx).Warn("Discarding malformed user id in session", slog.String("value", rawID))

			return nil, nil
		}

		return srv.GetByID(ctx, id)
	}

	rawSnap, ok, err := store.Get(ctx, service.SessionSlotUserDetails)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read user snapshot slot")
	}
	if !ok {
		return nil, nil
	}

	var snap entity.UserSnapshot
	if err := json.Unmarshal([]byte(rawSnap), &snap); err != nil {
		srv.log(ctx).Warn("Discarding malformed user snapshot in session", slog.Any("error", err))

		return nil, nil
	}
	if snap.Version != entity.SnapshotVersion {
		// A stale snapshot from an older release. Force a fresh login.
		srv.log(ctx).Debug("Discarding stale user snapshot", slog.Int("version", snap.Version))

		return nil, nil
	}

	return entity.UserFromSnapshot(snap), nil
}

// CreateIdentity returns a fresh, unpersisted user instance.
func (srv *identityService) CreateIdentity() *entity.User {
	return &entity.User{}
}
