package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	catalogpostgres "github.com/Apurer/storefront-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/Apurer/storefront-api/internal/domains/catalog/application"
	"github.com/Apurer/storefront-api/internal/platform/migrations"
	platformpostgres "github.com/Apurer/storefront-api/internal/platform/postgres"
)

// seed replaces the Postgres catalog with the bundled sample products.
func main() {
	_ = godotenv.Load()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot seed catalog")
	}
	if err := migrations.Run(db.WithContext(ctx)); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	count, err := catalogapp.NewService(catalogpostgres.NewRepository(db)).Seed(ctx)
	if err != nil {
		log.Fatalf("failed to seed catalog: %v", err)
	}
	logger.Info("catalog seeded", slog.Int("count", count))
}
