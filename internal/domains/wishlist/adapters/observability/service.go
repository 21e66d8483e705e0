package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	catalogdomain "github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	"github.com/Apurer/storefront-api/internal/domains/wishlist/domain"
	"github.com/Apurer/storefront-api/internal/domains/wishlist/ports"
)

const tracerName = "github.com/Apurer/storefront-api/internal/domains/wishlist/adapters/observability/service"

type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	toggles metric.Int64Counter
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
		if m == nil {
			return
		}
		s.toggles, _ = m.Int64Counter("wishlist.service.toggles", metric.WithDescription("Wishlist toggles by outcome"))
	}
}

// New wraps the wishlist service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:  inner,
		tracer: nooptrace.NewTracerProvider().Tracer(tracerName),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
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

func (s *Service) Toggle(ctx context.Context, userID, productID string) (domain.Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "WishlistService.Toggle", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("product.id", productID),
	))
	defer span.End()

	outcome, err := s.inner.Toggle(ctx, userID, productID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to toggle wishlist item",
			slog.String("user.id", userID), slog.String("product.id", productID), slog.String("error", err.Error()))
		return "", err
	}
	span.SetAttributes(attribute.String("wishlist.outcome", string(outcome)))
	if s.toggles != nil {
		s.toggles.Add(ctx, 1, metric.WithAttributes(attribute.String("wishlist.outcome", string(outcome))))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "wishlist item toggled",
		slog.String("user.id", userID), slog.String("product.id", productID), slog.String("outcome", string(outcome)))
	return outcome, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "WishlistService.List", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	products, err := s.inner.List(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to list wishlist", slog.String("user.id", userID), slog.String("error", err.Error()))
		return nil, err
	}
	span.SetAttributes(attribute.Int("wishlist.items", len(products)))
	return products, nil
}

var _ ports.Service = (*Service)(nil)
