package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/storefront-api/internal/domains/users/adapters/memory"
	"github.com/Apurer/storefront-api/internal/domains/users/domain"
	"github.com/Apurer/storefront-api/internal/domains/users/ports"
)

type usersFixture struct {
	svc      *Service
	sessions *memory.SessionStore
	now      time.Time
}

func newUsersFixture(t *testing.T) *usersFixture {
	t.Helper()
	f := &usersFixture{
		sessions: memory.NewSessionStore(),
		now:      time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(memory.NewRepository(), f.sessions, NewTokenManager("test-secret"),
		WithClock(func() time.Time { return f.now }),
		WithSessionTTL(time.Hour),
	)
	return f
}

func TestRegister_IssuesSession(t *testing.T) {
	f := newUsersFixture(t)
	ctx := context.Background()

	result, err := f.svc.Register(ctx, ports.RegisterInput{Name: "Ada", Email: " Ada@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", result.User.Email)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, f.now.Add(time.Hour), result.ExpiresAt)

	session, err := f.svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, session.UserID)

	me, err := f.svc.Me(ctx, session.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", me.Name)
}

func TestRegister_DefaultsNameToEmailLocalPart(t *testing.T) {
	f := newUsersFixture(t)

	result, err := f.svc.Register(context.Background(), ports.RegisterInput{Email: "grace@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "grace", result.User.Name)
}

func TestRegister_Validation(t *testing.T) {
	f := newUsersFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, ports.RegisterInput{Email: "not-an-email", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = f.svc.Register(ctx, ports.RegisterInput{Email: "ada@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, domain.ErrWeakPassword)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newUsersFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, ports.RegisterInput{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, ports.RegisterInput{Email: "ADA@example.com", Password: "another1"})
	assert.ErrorIs(t, err, ports.ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	f := newUsersFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, ports.RegisterInput{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	result, err := f.svc.Login(ctx, "ADA@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	_, err = f.svc.Login(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrAuthentication)

	_, err = f.svc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrAuthentication)

	_, err = f.svc.Login(ctx, "", "secret1")
	assert.ErrorIs(t, err, domain.ErrEmptyEmail)
}

func TestLogout_RevokesSession(t *testing.T) {
	f := newUsersFixture(t)
	ctx := context.Background()

	result, err := f.svc.Register(ctx, ports.RegisterInput{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	session, err := f.svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, session.TokenID))
	require.NoError(t, f.svc.Logout(ctx, session.TokenID))

	_, err = f.svc.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestAuthenticate_RejectsExpiredAndForeignTokens(t *testing.T) {
	f := newUsersFixture(t)
	ctx := context.Background()

	result, err := f.svc.Register(ctx, ports.RegisterInput{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, ErrAuthentication)

	other := NewTokenManager("other-secret")
	forged, err := other.Issue(domain.NewSession(result.User.ID, f.now, time.Hour))
	require.NoError(t, err)
	_, err = f.svc.Authenticate(ctx, forged)
	assert.ErrorIs(t, err, ErrAuthentication)

	f.now = f.now.Add(2 * time.Hour)
	_, err = f.svc.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, ErrAuthentication)
}
