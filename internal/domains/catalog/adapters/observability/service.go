package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	catalogdomain "github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/storefront-api/internal/domains/catalog/ports"
)

const tracerName = "github.com/Apurer/storefront-api/internal/domains/catalog/adapters/observability/service"

// Service decorates the catalog service with tracing, logging, and metrics.
type Service struct {
	inner   catalogports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

func New(inner catalogports.Service, opts ...Option) catalogports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) List(ctx context.Context, input catalogports.ListInput) (*catalogports.Page, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.List", trace.WithAttributes(
		attribute.String("catalog.search", input.Search),
		attribute.String("catalog.category", input.Category),
		attribute.String("catalog.sort", input.Sort),
		attribute.Int("catalog.page", input.Page),
	))
	defer span.End()

	page, err := s.inner.List(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list products")
	}
	s.metrics.recordQuery(ctx, "list")
	span.SetAttributes(attribute.Int64("catalog.total", page.Total))
	return page, nil
}

func (s *Service) Get(ctx context.Context, id string) (*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.Get", trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()

	product, err := s.inner.Get(ctx, id)
	if err != nil {
		if errors.Is(err, catalogports.ErrNotFound) {
			span.SetAttributes(attribute.Bool("catalog.not_found", true))
			return nil, err
		}
		return nil, s.handleError(ctx, span, err, "failed to load product", slog.String("product.id", id))
	}
	s.metrics.recordQuery(ctx, "get")
	return product, nil
}

func (s *Service) Seed(ctx context.Context) (int, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.Seed")
	defer span.End()

	count, err := s.inner.Seed(ctx)
	if err != nil {
		return 0, s.handleError(ctx, span, err, "failed to seed catalog")
	}
	s.logInfo(ctx, "catalog seeded", slog.Int("count", count))
	return count, nil
}

func (s *Service) UpdatePrice(ctx context.Context, id string, price decimal.Decimal) (*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.UpdatePrice", trace.WithAttributes(
		attribute.String("product.id", id),
		attribute.String("product.price", price.String()),
	))
	defer span.End()

	product, err := s.inner.UpdatePrice(ctx, id, price)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to reprice product", slog.String("product.id", id))
	}
	s.logInfo(ctx, "product repriced", slog.String("product.id", id), slog.String("price", product.Price.String()))
	return product, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

type serviceMetrics struct {
	queries metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	queries, _ := m.Int64Counter("catalog.service.queries", metric.WithDescription("Number of catalog reads by kind"))
	return serviceMetrics{queries: queries}
}

func (m serviceMetrics) recordQuery(ctx context.Context, kind string) {
	if m.queries != nil {
		m.queries.Add(ctx, 1, metric.WithAttributes(attribute.String("catalog.query", kind)))
	}
}

var _ catalogports.Service = (*Service)(nil)
