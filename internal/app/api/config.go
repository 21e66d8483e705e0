package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"

	platformobservability "github.com/Apurer/storefront-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/storefront-api/internal/platform/postgres"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port        string
	Environment string
	JWTSecret   string
	SessionTTL  time.Duration
	AdminAPIKey string
	AppURL      string
	CORSOrigins []string

	DefaultCheckoutProvider string

	StripeSecretKey       string
	StripeWebhookSecret   string
	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string
	MidtransServerKey     string
	MidtransProduction    bool

	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	// MaterializationTimeout bounds how long a webhook waits on the workflow.
	MaterializationTimeout time.Duration

	// Telemetry drives logging, span, and metric export for the process.
	Telemetry platformobservability.Settings
	// Postgres is the shared pool; an empty DSN selects the in-memory stores.
	Postgres platformpostgres.Options
}

const (
	defaultSessionTTL             = 24 * time.Hour
	defaultMaterializationTimeout = 30 * time.Second
)

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:                    envDefault("PORT", "8080"),
		Environment:             envDefault("ENVIRONMENT", "development"),
		JWTSecret:               strings.TrimSpace(os.Getenv("JWT_SECRET")),
		SessionTTL:              defaultSessionTTL,
		AdminAPIKey:             strings.TrimSpace(os.Getenv("ADMIN_API_KEY")),
		AppURL:                  strings.TrimRight(envDefault("APP_URL", "http://localhost:3000"), "/"),
		DefaultCheckoutProvider: strings.ToLower(strings.TrimSpace(os.Getenv("CHECKOUT_DEFAULT_PROVIDER"))),
		StripeSecretKey:         strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY")),
		StripeWebhookSecret:     strings.TrimSpace(os.Getenv("STRIPE_WEBHOOK_SECRET")),
		RazorpayKeyID:           strings.TrimSpace(os.Getenv("RAZORPAY_KEY_ID")),
		RazorpayKeySecret:       strings.TrimSpace(os.Getenv("RAZORPAY_KEY_SECRET")),
		RazorpayWebhookSecret:   strings.TrimSpace(os.Getenv("RAZORPAY_WEBHOOK_SECRET")),
		MidtransServerKey:       strings.TrimSpace(os.Getenv("MIDTRANS_SERVER_KEY")),
		MidtransProduction:      strings.EqualFold(strings.TrimSpace(os.Getenv("MIDTRANS_ENVIRONMENT")), "production"),
		TemporalAddress:         envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:       envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:        isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		MaterializationTimeout:  defaultMaterializationTimeout,
	}
	pg, err := platformpostgres.OptionsFromEnv(nil)
	if err != nil {
		return Config{}, err
	}
	cfg.Postgres = pg
	telemetry, err := platformobservability.SettingsFromEnv(serviceName)
	if err != nil {
		return Config{}, err
	}
	telemetry.Environment = cfg.Environment
	cfg.Telemetry = telemetry
	if raw := strings.TrimSpace(os.Getenv("SESSION_TTL_HOURS")); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return Config{}, fmt.Errorf("SESSION_TTL_HOURS must be a positive integer")
		}
		cfg.SessionTTL = time.Duration(hours) * time.Hour
	}
	if raw := strings.TrimSpace(os.Getenv("ORDER_MATERIALIZATION_TIMEOUT")); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil || timeout <= 0 {
			return Config{}, fmt.Errorf("ORDER_MATERIALIZATION_TIMEOUT must be a positive duration")
		}
		cfg.MaterializationTimeout = timeout
	}
	cfg.CORSOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{cfg.AppURL}
	}
	if cfg.JWTSecret == "" {
		if cfg.Production() {
			return Config{}, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "development-only-secret"
	}
	return cfg, nil
}

// Production reports whether cookies must be HTTPS-only.
func (c Config) Production() bool {
	return strings.EqualFold(c.Environment, "production")
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.TrimRight(part, "/"))
		}
	}
	return out
}
