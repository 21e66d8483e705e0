package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearPostgresEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"POSTGRES_DSN", "POSTGRES_MAX_OPEN_CONNS", "POSTGRES_MAX_IDLE_CONNS"} {
		t.Setenv(key, "")
	}
}

func TestConnect_RejectsEmptyDSN(t *testing.T) {
	db, err := Connect(context.Background(), Options{DSN: "  "})
	require.ErrorIs(t, err, ErrEmptyDSN)
	assert.Nil(t, db)
}

func TestConnectFromEnv_WithoutDSNReturnsNil(t *testing.T) {
	clearPostgresEnv(t)

	db, cleanup := ConnectFromEnv(context.Background(), nil)
	defer cleanup()
	assert.Nil(t, db)
}

func TestOptionsFromEnv_ReadsPoolLimits(t *testing.T) {
	clearPostgresEnv(t)
	t.Setenv("POSTGRES_DSN", " postgres://shop@db/storefront ")
	t.Setenv("POSTGRES_MAX_OPEN_CONNS", "40")
	t.Setenv("POSTGRES_MAX_IDLE_CONNS", "10")

	opts, err := OptionsFromEnv(nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://shop@db/storefront", opts.DSN)
	assert.Equal(t, 40, opts.MaxOpenConns)
	assert.Equal(t, 10, opts.MaxIdleConns)
}

func TestOptionsFromEnv_RejectsBadPoolLimit(t *testing.T) {
	clearPostgresEnv(t)
	t.Setenv("POSTGRES_MAX_OPEN_CONNS", "many")

	_, err := OptionsFromEnv(nil)
	require.Error(t, err)
}

func TestOptions_DefaultsKeepIdleWithinOpen(t *testing.T) {
	opts := Options{MaxOpenConns: 3, MaxIdleConns: 8}.withDefaults()
	assert.Equal(t, 3, opts.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, opts.ConnMaxLifetime)
	assert.Equal(t, 200*time.Millisecond, opts.SlowQuery)

	zero := Options{}.withDefaults()
	assert.Equal(t, defaultMaxOpenConns, zero.MaxOpenConns)
	assert.Equal(t, defaultMaxIdleConns, zero.MaxIdleConns)
}
