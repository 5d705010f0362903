// Package middleware contains the HTTP middlewares of the API server.
package middleware

import (
	"net/http"

	"biblio/config"
	deliverycontext "biblio/internal/delivery/context"
	"biblio/internal/domain/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// SessionMiddleware binds a browser session to the request. The session is
// identified by a cookie; first-time visitors get a fresh one. The bound
// store travels down to the application layer through the request context,
// keeping the usecases free of any HTTP types.
type SessionMiddleware struct {
	factory    service.SessionStoreFactory
	cookieName string
	maxAge     int
}

// NewSessionMiddleware creates a new session middleware.
func NewSessionMiddleware(factory service.SessionStoreFactory, cfg *config.Config) *SessionMiddleware {
	return &SessionMiddleware{
		factory:    factory,
		cookieName: cfg.Session.CookieName,
		maxAge:     int(cfg.Session.TTL.Seconds()),
	}
}

// Bind attaches the session store for the request's session cookie.
func (m *SessionMiddleware) Bind(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sessionID := ""
		if cookie, err := c.Cookie(m.cookieName); err == nil {
			if _, parseErr := uuid.Parse(cookie.Value); parseErr == nil {
				sessionID = cookie.Value
			}
		}
		if sessionID == "" {
			sessionID = uuid.New().String()
			c.SetCookie(&http.Cookie{
				Name:     m.cookieName,
				Value:    sessionID,
				Path:     "/",
				MaxAge:   m.maxAge,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		store := m.factory.ForSession(sessionID)
		ctx := deliverycontext.WithSessionStore(c.Request().Context(), store)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}
