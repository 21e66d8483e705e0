package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/storefront-api/internal/domains/users/domain"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists issued sessions so tokens can be revoked before they expire.
type SessionStore interface {
	Save(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, tokenID string) (*domain.Session, error)
	Delete(ctx context.Context, tokenID string) error
	// PurgeExpired removes sessions that expired at or before now and reports how many.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
