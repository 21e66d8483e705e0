package ports

import (
	"context"
	"time"

	"github.com/Apurer/storefront-api/internal/domains/users/domain"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthResult is a signed-in user plus the token to hand back as a cookie.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Service exposes user bounded context use cases to adapters.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// Logout revokes the session; revoking an unknown session is not an error.
	Logout(ctx context.Context, sessionID string) error
	// Authenticate verifies a token and returns its live session.
	Authenticate(ctx context.Context, token string) (*domain.Session, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
}
