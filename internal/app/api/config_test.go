package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "POSTGRES_DSN", "ENVIRONMENT", "JWT_SECRET", "SESSION_TTL_HOURS", "ADMIN_API_KEY",
		"APP_URL", "CORS_ALLOWED_ORIGINS", "CHECKOUT_DEFAULT_PROVIDER", "MIDTRANS_ENVIRONMENT",
		"TEMPORAL_ADDRESS", "TEMPORAL_NAMESPACE", "TEMPORAL_DISABLED", "ORDER_MATERIALIZATION_TIMEOUT",
		"SERVICE_VERSION", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_TRACES_EXPORTER", "OTEL_METRICS_EXPORTER",
		"LOG_LEVEL", "METRICS_EXPORT_INTERVAL", "POSTGRES_MAX_OPEN_CONNS", "POSTGRES_MAX_IDLE_CONNS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, client.DefaultHostPort, cfg.TemporalAddress)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.False(t, cfg.Production())
	assert.False(t, cfg.TemporalDisabled)
	assert.Equal(t, 30*time.Second, cfg.MaterializationTimeout)
	assert.Empty(t, cfg.Postgres.DSN)
	assert.Equal(t, serviceName, cfg.Telemetry.ServiceName)
	assert.Equal(t, "dev", cfg.Telemetry.ServiceVersion)
	assert.Equal(t, "development", cfg.Telemetry.Environment)
}

func TestLoadConfig_TelemetryFollowsConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "staging")
	t.Setenv("SERVICE_VERSION", "1.4.2")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("POSTGRES_DSN", "postgres://shop@db/storefront")
	t.Setenv("POSTGRES_MAX_OPEN_CONNS", "40")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Telemetry.Environment)
	assert.Equal(t, "1.4.2", cfg.Telemetry.ServiceVersion)
	assert.Equal(t, "otlp", cfg.Telemetry.MetricsExporter)
	assert.Equal(t, "postgres://shop@db/storefront", cfg.Postgres.DSN)
	assert.Equal(t, 40, cfg.Postgres.MaxOpenConns)
}

func TestLoadConfig_RejectsBadTelemetry(t *testing.T) {
	clearEnv(t)
	t.Setenv("OTEL_METRICS_EXPORTER", "prometheus")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_TTL_HOURS", "2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example.com/, https://admin.example.com")
	t.Setenv("CHECKOUT_DEFAULT_PROVIDER", " Stripe ")
	t.Setenv("MIDTRANS_ENVIRONMENT", "Production")
	t.Setenv("TEMPORAL_DISABLED", "yes")
	t.Setenv("ORDER_MATERIALIZATION_TIMEOUT", "5s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"https://shop.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, "stripe", cfg.DefaultCheckoutProvider)
	assert.True(t, cfg.MidtransProduction)
	assert.True(t, cfg.TemporalDisabled)
	assert.Equal(t, 5*time.Second, cfg.MaterializationTimeout)
}

func TestLoadConfig_RejectsBadSessionTTL(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_TTL_HOURS", "-1")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfig_RejectsBadMaterializationTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("ORDER_MATERIALIZATION_TIMEOUT", "soon")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfig_ProductionRequiresSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")

	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Production())
}
