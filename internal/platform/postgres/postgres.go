package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrEmptyDSN is returned when no connection string is configured.
var ErrEmptyDSN = errors.New("postgres DSN is empty")

const (
	defaultMaxOpenConns    = 20
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 30 * time.Minute
	defaultSlowQuery       = 200 * time.Millisecond
	pingTimeout            = 5 * time.Second
)

// Options configures the shared pool behind every storefront repository.
type Options struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// SlowQuery is the threshold above which statements are logged as warnings.
	SlowQuery time.Duration
	Logger    *slog.Logger
}

// OptionsFromEnv reads POSTGRES_DSN and the POSTGRES_MAX_* pool limits.
func OptionsFromEnv(logger *slog.Logger) (Options, error) {
	opts := Options{
		DSN:          strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		MaxOpenConns: defaultMaxOpenConns,
		MaxIdleConns: defaultMaxIdleConns,
		Logger:       logger,
	}
	for key, target := range map[string]*int{
		"POSTGRES_MAX_OPEN_CONNS": &opts.MaxOpenConns,
		"POSTGRES_MAX_IDLE_CONNS": &opts.MaxIdleConns,
	} {
		raw := strings.TrimSpace(os.Getenv(key))
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			return Options{}, fmt.Errorf("%s must be a positive integer", key)
		}
		*target = value
	}
	return opts, nil
}

func (o Options) withDefaults() Options {
	if o.MaxOpenConns <= 0 {
		o.MaxOpenConns = defaultMaxOpenConns
	}
	if o.MaxIdleConns <= 0 {
		o.MaxIdleConns = defaultMaxIdleConns
	}
	if o.MaxIdleConns > o.MaxOpenConns {
		o.MaxIdleConns = o.MaxOpenConns
	}
	if o.ConnMaxLifetime <= 0 {
		o.ConnMaxLifetime = defaultConnMaxLifetime
	}
	if o.SlowQuery <= 0 {
		o.SlowQuery = defaultSlowQuery
	}
	return o
}

// Connect opens the pool, translates driver errors into gorm sentinels, and verifies connectivity.
func Connect(ctx context.Context, opts Options) (*gorm.DB, error) {
	if strings.TrimSpace(opts.DSN) == "" {
		return nil, ErrEmptyDSN
	}
	opts = opts.withDefaults()
	db, err := gorm.Open(postgres.Open(opts.DSN), &gorm.Config{
		TranslateError: true,
		Logger:         queryLogger(opts),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// queryLogger routes slow statements and driver errors through slog; record-not-found is expected.
func queryLogger(opts Options) gormlogger.Interface {
	if opts.Logger == nil {
		return gormlogger.Discard
	}
	return gormlogger.New(
		slog.NewLogLogger(opts.Logger.Handler(), slog.LevelWarn),
		gormlogger.Config{
			SlowThreshold:             opts.SlowQuery,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		},
	)
}

// ConnectFromEnv dials PostgreSQL for the command-line tools and returns the DB plus a cleanup function.
// When POSTGRES_DSN is missing or the connection fails, it logs and returns nil with a no-op cleanup.
func ConnectFromEnv(ctx context.Context, logger *slog.Logger) (*gorm.DB, func()) {
	if logger == nil {
		logger = slog.Default()
	}
	opts, err := OptionsFromEnv(logger)
	if err != nil {
		logger.Warn("invalid postgres settings", slog.String("error", err.Error()))
		return nil, func() {}
	}
	db, err := Connect(ctx, opts)
	if errors.Is(err, ErrEmptyDSN) {
		logger.Warn("POSTGRES_DSN not set")
		return nil, func() {}
	}
	if err != nil {
		logger.Warn("failed to connect to postgres", slog.String("error", err.Error()))
		return nil, func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection", slog.String("error", err.Error()))
		return nil, func() {}
	}
	logger.Info("postgres connection established",
		slog.Int("max_open_conns", opts.MaxOpenConns),
		slog.Int("max_idle_conns", opts.MaxIdleConns),
	)
	return db, func() { _ = sqlDB.Close() }
}
