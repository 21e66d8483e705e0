package domain

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

var (
	ErrEmptyEmail    = errors.New("email is required")
	ErrInvalidEmail  = errors.New("email is invalid")
	ErrEmptyPassword = errors.New("password is required")
	ErrWeakPassword  = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
)

// User is a storefront customer account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// NewUser validates the registration fields and hashes the password.
func NewUser(name, email, password string) (*User, error) {
	user := &User{ID: uuid.NewString(), Name: strings.TrimSpace(name)}
	if err := user.SetEmail(email); err != nil {
		return nil, err
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	if user.Name == "" {
		user.Name = strings.SplitN(user.Email, "@", 2)[0]
	}
	return user, nil
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) SetEmail(email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return ErrEmptyEmail
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	u.Email = email
	return nil
}

// SetPassword stores a bcrypt hash; the plaintext is never kept.
func (u *User) SetPassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return ErrEmptyPassword
	}
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	if u == nil || u.PasswordHash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Validate re-applies the persisted invariants.
func (u *User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user id is required")
	}
	if err := u.SetEmail(u.Email); err != nil {
		return err
	}
	if u.PasswordHash == "" {
		return ErrEmptyPassword
	}
	return nil
}

// Session is one issued login, identified by the token's jti claim.
type Session struct {
	TokenID   string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func NewSession(userID string, now time.Time, ttl time.Duration) Session {
	return Session{
		TokenID:   uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
