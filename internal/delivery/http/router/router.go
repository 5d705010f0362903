// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"biblio/internal/delivery/http/middleware"
	"biblio/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	SessionMiddleware *middleware.SessionMiddleware
	AuthMiddleware    *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler       *handler.AuthHandler
	userHandler       *handler.UserHandler
	sessionMiddleware *middleware.SessionMiddleware
	authMiddleware    *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:       params.AuthHandler,
		userHandler:       params.UserHandler,
		sessionMiddleware: params.SessionMiddleware,
		authMiddleware:    params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	api := e.Group("/api")

	// Browser surface: session cookie carries the identity.
	authGroup := api.Group("/auth", r.sessionMiddleware.Bind)
	{
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/logout", r.authHandler.Logout)
	}

	userGroup := api.Group("/users", r.sessionMiddleware.Bind)
	{
		userGroup.GET("/me", r.userHandler.Me)
		userGroup.PUT("/me/catalog", r.userHandler.SaveCatalogCredentials)
	}

	// API clients authenticate with the bearer token issued at login.
	clientGroup := api.Group("/client", r.authMiddleware.Authenticate)
	{
		clientGroup.GET("/me", r.userHandler.ClientMe)
	}
}
