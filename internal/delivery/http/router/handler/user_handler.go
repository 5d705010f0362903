package handler

import (
	"log/slog"
	"net/http"

	"biblio/internal/delivery/http/middleware"
	"biblio/internal/delivery/http/response"
	domainerrors "biblio/internal/domain/errors"
	"biblio/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type catalogCredentialsRequest struct {
	CatalogUsername string `json:"catalogUsername" validate:"required,max=50"`
	CatalogPassword string `json:"catalogPassword" validate:"max=255"`
}

// UserHandler holds dependencies for user-related handlers.
type UserHandler struct {
	identity usecase.IdentityUsecase
	catalog  usecase.CatalogUsecase
	logger   *slog.Logger
}

// NewUserHandler is the constructor for UserHandler, injected by Fx.
func NewUserHandler(identity usecase.IdentityUsecase, catalog usecase.CatalogUsecase, logger *slog.Logger) *UserHandler {
	return &UserHandler{identity: identity, catalog: catalog, logger: logger}
}

// Me returns the account currently logged into the browser session.
func (h *UserHandler) Me(c echo.Context) error {
	user, err := h.identity.ResolveFromSession(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}
	if user == nil {
		return domainerrors.ErrUnauthorized.WrapMessage("no identity in session")
	}

	return response.Success(c, http.StatusOK, NewUserResponse(user), "Profile retrieved successfully")
}

// SaveCatalogCredentials stores the catalog login for the session's account.
func (h *UserHandler) SaveCatalogCredentials(c echo.Context) error {
	user, err := h.identity.ResolveFromSession(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}
	if user == nil {
		return domainerrors.ErrUnauthorized.WrapMessage("no identity in session")
	}

	var req catalogCredentialsRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid catalog credentials input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	updated, err := h.catalog.SaveCredentials(c.Request().Context(), user.ID, req.CatalogUsername, req.CatalogPassword)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, NewUserResponse(updated), "Catalog credentials saved")
}

// ClientMe returns the account behind a bearer access token. This is the
// non-browser counterpart to Me; the auth middleware has already validated
// the token.
func (h *UserHandler) ClientMe(c echo.Context) error {
	userID, ok := c.Get(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	user, err := h.identity.GetByID(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}
	if user == nil {
		return domainerrors.ErrUserNotFound.WrapMessage("token references a deleted account")
	}

	return response.Success(c, http.StatusOK, NewUserResponse(user), "Profile retrieved successfully")
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}
