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

	cartdomain "github.com/Apurer/storefront-api/internal/domains/cart/domain"
	cartports "github.com/Apurer/storefront-api/internal/domains/cart/ports"
)

const tracerName = "github.com/Apurer/storefront-api/internal/domains/cart/adapters/observability/service"

// Service decorates the cart service with tracing, logging, and metrics.
type Service struct {
	inner   cartports.Service
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

// New wraps the core cart service.
func New(inner cartports.Service, opts ...Option) cartports.Service {
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

func (s *Service) GetCart(ctx context.Context, userID string) (*cartdomain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.GetCart", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	result, err := s.inner.GetCart(ctx, userID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load cart", slog.String("user.id", userID))
	}
	span.SetAttributes(attribute.Int("cart.items", len(result.Items)))
	return result, nil
}

func (s *Service) AddItem(ctx context.Context, userID, productID string, quantity int) (*cartdomain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.AddItem", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("product.id", productID),
		attribute.Int("cart.quantity", quantity),
	))
	defer span.End()

	s.logInfo(ctx, "adding cart item", slog.String("user.id", userID), slog.String("product.id", productID), slog.Int("quantity", quantity))
	result, err := s.inner.AddItem(ctx, userID, productID, quantity)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to add cart item", slog.String("user.id", userID), slog.String("product.id", productID))
	}
	s.metrics.recordMutation(ctx, "add")
	s.logInfo(ctx, "cart item added", slog.String("item.id", result.ID), slog.Int("quantity", result.Quantity))
	return result, nil
}

func (s *Service) UpdateItemQuantity(ctx context.Context, userID, itemID string, quantity int) (*cartdomain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.UpdateItemQuantity", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("item.id", itemID),
		attribute.Int("cart.quantity", quantity),
	))
	defer span.End()

	result, err := s.inner.UpdateItemQuantity(ctx, userID, itemID, quantity)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update cart item", slog.String("user.id", userID), slog.String("item.id", itemID))
	}
	s.metrics.recordMutation(ctx, "update")
	s.logInfo(ctx, "cart item updated", slog.String("item.id", itemID), slog.Int("quantity", result.Quantity))
	return result, nil
}

func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) error {
	ctx, span := s.tracer.Start(ctx, "CartService.RemoveItem", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("item.id", itemID),
	))
	defer span.End()

	if err := s.inner.RemoveItem(ctx, userID, itemID); err != nil {
		return s.handleError(ctx, span, err, "failed to remove cart item", slog.String("user.id", userID), slog.String("item.id", itemID))
	}
	s.metrics.recordMutation(ctx, "remove")
	s.logInfo(ctx, "cart item removed", slog.String("item.id", itemID))
	return nil
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	ctx, span := s.tracer.Start(ctx, "CartService.Clear", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	if err := s.inner.Clear(ctx, userID); err != nil {
		return s.handleError(ctx, span, err, "failed to clear cart", slog.String("user.id", userID))
	}
	s.metrics.recordMutation(ctx, "clear")
	s.logInfo(ctx, "cart cleared", slog.String("user.id", userID))
	return nil
}

func (s *Service) Snapshot(ctx context.Context, userID string) ([]*cartdomain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.Snapshot", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	result, err := s.inner.Snapshot(ctx, userID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to snapshot cart", slog.String("user.id", userID))
	}
	span.SetAttributes(attribute.Int("cart.lines", len(result)))
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	mutations metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	mutations, _ := m.Int64Counter("cart.service.mutations", metric.WithDescription("Number of cart mutations by kind"))
	return serviceMetrics{mutations: mutations}
}

func (m serviceMetrics) recordMutation(ctx context.Context, kind string) {
	if m.mutations != nil {
		m.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("cart.mutation", kind)))
	}
}

var _ cartports.Service = (*Service)(nil)
