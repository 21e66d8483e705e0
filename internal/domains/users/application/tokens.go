package application

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Apurer/storefront-api/internal/domains/users/domain"
)

const (
	DefaultTokenIssuer = "storefront-api"
	DefaultSessionTTL  = 24 * time.Hour
)

var ErrInvalidToken = errors.New("token is invalid")

// TokenManager signs and verifies HS256 session tokens carrying sub and jti.
type TokenManager struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret), issuer: DefaultTokenIssuer, now: time.Now}
}

// Issue signs a token for the session.
func (m *TokenManager) Issue(session domain.Session) (string, error) {
	if len(m.secret) == 0 {
		return "", errors.New("token secret not configured")
	}
	claims := jwt.RegisteredClaims{
		Subject:   session.UserID,
		ID:        session.TokenID,
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse verifies the signature, issuer and expiry and returns the registered claims.
func (m *TokenManager) Parse(raw string) (*jwt.RegisteredClaims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidToken
	}
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
