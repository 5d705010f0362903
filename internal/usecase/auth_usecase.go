package usecase

import (
	"context"

	"biblio/internal/domain/entity"
)

// --- Input DTOs ---

// RegisterInput defines the data required to create a new patron account.
type RegisterInput struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
}

// LoginInput defines the data required for a patron to log in.
type LoginInput struct {
	Username string
	Password string
}

// --- Output DTOs ---

// LoginOutput returns the session-attached user and an access token for API
// clients after a successful login.
type LoginOutput struct {
	AccessToken string
	User        *entity.User
}

// AuthUsecase covers the local account lifecycle: registration, login with
// session attachment, and logout.
type AuthUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*entity.User, error)
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
	Logout(ctx context.Context) error
}
