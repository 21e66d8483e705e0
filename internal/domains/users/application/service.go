package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Apurer/storefront-api/internal/domains/users/domain"
	"github.com/Apurer/storefront-api/internal/domains/users/ports"
)

// Service exposes user bounded context use cases.
type Service struct {
	repo     ports.Repository
	sessions ports.SessionStore
	tokens   *TokenManager
	ttl      time.Duration
	now      func() time.Time
}

type Option func(*Service)

// WithSessionTTL overrides how long issued sessions live.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
			s.tokens.now = now
		}
	}
}

func NewService(repo ports.Repository, sessions ports.SessionStore, tokens *TokenManager, opts ...Option) *Service {
	s := &Service{repo: repo, sessions: sessions, tokens: tokens, ttl: DefaultSessionTTL, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) Register(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	user, err := domain.NewUser(input.Name, input.Email, input.Password)
	if err != nil {
		return nil, mapError(err)
	}
	user.CreatedAt = s.now()
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, created)
}

func (s *Service) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, mapError(domain.ErrEmptyEmail)
	}
	if password == "" {
		return nil, mapError(domain.ErrEmptyPassword)
	}
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, mapError(ports.ErrInvalidCredentials)
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	return s.startSession(ctx, user)
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, ports.ErrSessionNotFound) {
		return err
	}
	return nil
}

// Authenticate accepts a token only while its session is stored and unexpired.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	session, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		return nil, mapError(err)
	}
	if session.UserID != claims.Subject || session.Expired(s.now()) {
		return nil, mapError(ports.ErrSessionNotFound)
	}
	return session, nil
}

func (s *Service) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *Service) startSession(ctx context.Context, user *domain.User) (*ports.AuthResult, error) {
	session := domain.NewSession(user.ID, s.now(), s.ttl)
	token, err := s.tokens.Issue(session)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return &ports.AuthResult{User: user, Token: token, ExpiresAt: session.ExpiresAt}, nil
}

var _ ports.Service = (*Service)(nil)
