package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Exporter names accepted by Settings.
const (
	ExporterOTLP   = "otlp"
	ExporterStdout = "stdout"
	ExporterNone   = "none"
)

const defaultMetricsInterval = time.Minute

// Settings selects where one storefront process sends logs, spans, and metrics.
type Settings struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	LogLevel       slog.Level
	LogOutput      io.Writer

	OTLPEndpoint string
	OTLPInsecure bool
	// TracesExporter and MetricsExporter are ExporterOTLP, ExporterStdout, or ExporterNone.
	TracesExporter  string
	MetricsExporter string
	MetricsInterval time.Duration
	// MetricReader replaces the exporter-backed periodic reader when set.
	MetricReader sdkmetric.Reader
}

// SettingsFromEnv reads the OTEL_* and LOG_LEVEL variables shared by every binary.
// Metrics go to OTLP only when a collector endpoint is configured.
func SettingsFromEnv(serviceName string) (Settings, error) {
	settings := Settings{
		ServiceName:     serviceName,
		ServiceVersion:  envOrDefault("SERVICE_VERSION", "dev"),
		Environment:     envOrDefault("ENVIRONMENT", "development"),
		OTLPEndpoint:    strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		OTLPInsecure:    os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") != "0",
		TracesExporter:  strings.ToLower(envOrDefault("OTEL_TRACES_EXPORTER", ExporterOTLP)),
		MetricsInterval: defaultMetricsInterval,
	}
	settings.MetricsExporter = ExporterNone
	if settings.OTLPEndpoint != "" {
		settings.MetricsExporter = ExporterOTLP
	}
	if raw := strings.TrimSpace(os.Getenv("OTEL_METRICS_EXPORTER")); raw != "" {
		settings.MetricsExporter = strings.ToLower(raw)
	}
	if raw := strings.TrimSpace(os.Getenv("LOG_LEVEL")); raw != "" {
		if err := settings.LogLevel.UnmarshalText([]byte(raw)); err != nil {
			return Settings{}, fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}
	if raw := strings.TrimSpace(os.Getenv("METRICS_EXPORT_INTERVAL")); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil || interval <= 0 {
			return Settings{}, fmt.Errorf("METRICS_EXPORT_INTERVAL must be a positive duration")
		}
		settings.MetricsInterval = interval
	}
	for _, exporter := range []string{settings.TracesExporter, settings.MetricsExporter} {
		switch exporter {
		case ExporterOTLP, ExporterStdout, ExporterNone:
		default:
			return Settings{}, fmt.Errorf("unknown telemetry exporter %q", exporter)
		}
	}
	return settings, nil
}

// Instruments bundles the runtime-wide observability dependencies.
type Instruments struct {
	Logger         *slog.Logger
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// Init installs slog and the OpenTelemetry providers for the process. The returned
// shutdown flushes pending spans and a final metrics export.
func Init(ctx context.Context, settings Settings) (*Instruments, func(context.Context) error, error) {
	logger := newLogger(settings)

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithAttributes(
			attribute.String("service.name", settings.ServiceName),
			attribute.String("service.version", settings.ServiceVersion),
			attribute.String("deployment.environment", settings.Environment),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	traceOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	spanExporter, err := newSpanExporter(ctx, settings, logger)
	if err != nil {
		return nil, nil, err
	}
	if spanExporter != nil {
		traceOpts = append(traceOpts, sdktrace.WithBatcher(spanExporter))
	}
	tracerProvider := sdktrace.NewTracerProvider(traceOpts...)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	reader, err := newMetricReader(ctx, settings)
	if err != nil {
		return nil, nil, errors.Join(err, tracerProvider.Shutdown(ctx))
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(meterProvider)

	logger.Info("telemetry initialized",
		slog.String("service.name", settings.ServiceName),
		slog.String("service.version", settings.ServiceVersion),
		slog.String("traces", settings.TracesExporter),
		slog.String("metrics", settings.MetricsExporter),
	)

	instruments := &Instruments{
		Logger:         logger,
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
	}
	shutdown := func(ctx context.Context) error {
		return errors.Join(meterProvider.Shutdown(ctx), tracerProvider.Shutdown(ctx))
	}
	return instruments, shutdown, nil
}

// Tracer returns a named tracer from the configured provider.
func (i *Instruments) Tracer(name string) trace.Tracer {
	if i == nil || i.TracerProvider == nil {
		return otel.Tracer(name)
	}
	return i.TracerProvider.Tracer(name)
}

// Meter returns a named meter from the configured provider.
func (i *Instruments) Meter(name string) metric.Meter {
	if i == nil || i.MeterProvider == nil {
		return metricnoop.NewMeterProvider().Meter(name)
	}
	return i.MeterProvider.Meter(name)
}

func newLogger(settings Settings) *slog.Logger {
	out := settings.LogOutput
	if out == nil {
		out = os.Stdout
	}
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: settings.LogLevel, AddSource: true})
	logger := slog.New(handler).With(slog.String("service", settings.ServiceName))
	slog.SetDefault(logger)
	return logger
}

// newSpanExporter returns nil for ExporterNone; spans are still created for propagation.
func newSpanExporter(ctx context.Context, settings Settings, logger *slog.Logger) (sdktrace.SpanExporter, error) {
	switch settings.TracesExporter {
	case ExporterNone:
		return nil, nil
	case ExporterStdout:
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	opts := []otlptracehttp.Option{}
	if settings.OTLPEndpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(settings.OTLPEndpoint))
	}
	if settings.OTLPInsecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err == nil {
		return exporter, nil
	}
	logger.Warn("failed to initialize OTLP trace exporter, falling back to stdout", slog.String("error", err.Error()))
	return stdouttrace.New(stdouttrace.WithPrettyPrint())
}

// newMetricReader exports cart, checkout, and order counters on an interval. Without an
// exporter a manual reader keeps the instruments live for an in-process Collect.
func newMetricReader(ctx context.Context, settings Settings) (sdkmetric.Reader, error) {
	if settings.MetricReader != nil {
		return settings.MetricReader, nil
	}
	interval := settings.MetricsInterval
	if interval <= 0 {
		interval = defaultMetricsInterval
	}
	var exporter sdkmetric.Exporter
	switch settings.MetricsExporter {
	case ExporterOTLP:
		opts := []otlpmetrichttp.Option{}
		if settings.OTLPEndpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(settings.OTLPEndpoint))
		}
		if settings.OTLPInsecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		otlpExporter, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("otlp metric exporter: %w", err)
		}
		exporter = otlpExporter
	case ExporterStdout:
		stdoutExporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("stdout metric exporter: %w", err)
		}
		exporter = stdoutExporter
	default:
		return sdkmetric.NewManualReader(), nil
	}
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)), nil
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
