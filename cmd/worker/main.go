package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	checkoutpostgres "github.com/Apurer/storefront-api/internal/domains/checkout/adapters/persistence/postgres"
	checkoutapp "github.com/Apurer/storefront-api/internal/domains/checkout/application"
	"github.com/Apurer/storefront-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/storefront-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/storefront-api/internal/platform/postgres"
	checkoutactivities "github.com/Apurer/storefront-api/internal/platform/temporal/activities/checkout"
	checkoutworkflows "github.com/Apurer/storefront-api/internal/platform/temporal/workflows/checkout"
)

func main() {
	_ = godotenv.Load()
	ctx := context.Background()
	const serviceName = "storefront-worker"
	settings, err := platformobservability.SettingsFromEnv(serviceName)
	if err != nil {
		log.Fatalf("invalid telemetry settings: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, settings)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	// Orders written by the worker must be visible to the API, so there is no in-memory fallback.
	db, cleanupDB := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanupDB()
	if db == nil {
		logger.Error("worker requires POSTGRES_DSN")
		os.Exit(1)
	}
	if err := migrations.Run(db.WithContext(ctx)); err != nil {
		logger.Error("failed to migrate schema", slog.String("error", err.Error()))
		os.Exit(1)
	}
	recorder := checkoutapp.NewRecorder(checkoutpostgres.NewLedger(db))
	orderActivities := checkoutactivities.NewActivities(recorder)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, checkoutworkflows.OrderMaterializationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(checkoutworkflows.OrderMaterializationWorkflow, workflow.RegisterOptions{Name: checkoutworkflows.OrderMaterializationWorkflowName})
	w.RegisterActivityWithOptions(orderActivities.MaterializeOrder, activity.RegisterOptions{Name: checkoutactivities.MaterializeOrderActivityName})

	logger.Info("worker listening", slog.String("taskQueue", checkoutworkflows.OrderMaterializationTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
