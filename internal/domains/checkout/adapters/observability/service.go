package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	checkoutports "github.com/Apurer/storefront-api/internal/domains/checkout/ports"
)

const tracerName = "github.com/Apurer/storefront-api/internal/domains/checkout/adapters/observability/service"

// Service decorates the checkout service with tracing, logging, and metrics.
type Service struct {
	inner   checkoutports.Service
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

// New wraps the core checkout service.
func New(inner checkoutports.Service, opts ...Option) checkoutports.Service {
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

func (s *Service) Checkout(ctx context.Context, input checkoutports.CheckoutInput) (*checkoutports.CheckoutResult, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.Checkout", trace.WithAttributes(
		attribute.String("user.id", input.UserID),
		attribute.String("checkout.strategy", input.Strategy),
		attribute.String("checkout.currency", input.Currency),
	))
	defer span.End()

	s.logInfo(ctx, "checkout requested", slog.String("user.id", input.UserID), slog.String("strategy", input.Strategy))
	result, err := s.inner.Checkout(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "checkout failed", slog.String("user.id", input.UserID), slog.String("strategy", input.Strategy))
	}
	s.metrics.recordCheckout(ctx, result.Strategy)
	switch {
	case result.Order != nil:
		span.SetAttributes(attribute.String("order.id", result.Order.ID))
		s.logInfo(ctx, "checkout completed", slog.String("order.id", result.Order.ID), slog.String("total", result.Order.Total.StringFixed(2)))
	case result.Session != nil:
		span.SetAttributes(attribute.String("checkout.session_id", result.Session.SessionID))
		s.logInfo(ctx, "payment session opened", slog.String("provider", result.Session.Provider), slog.String("session.id", result.Session.SessionID))
	}
	return result, nil
}

func (s *Service) OpenSession(ctx context.Context, input checkoutports.CheckoutInput) (*checkoutports.Session, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.OpenSession", trace.WithAttributes(
		attribute.String("user.id", input.UserID),
		attribute.String("payment.provider", input.Strategy),
		attribute.String("checkout.currency", input.Currency),
	))
	defer span.End()

	session, err := s.inner.OpenSession(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "payment session failed", slog.String("user.id", input.UserID), slog.String("provider", input.Strategy))
	}
	s.metrics.recordCheckout(ctx, session.Provider)
	span.SetAttributes(attribute.String("checkout.session_id", session.SessionID))
	s.logInfo(ctx, "payment session opened", slog.String("provider", session.Provider), slog.String("session.id", session.SessionID))
	return session, nil
}

func (s *Service) HandleWebhook(ctx context.Context, input checkoutports.WebhookInput) (*checkoutports.WebhookResult, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.HandleWebhook", trace.WithAttributes(
		attribute.String("payment.provider", input.Provider),
		attribute.Int("webhook.bytes", len(input.Payload)),
	))
	defer span.End()

	result, err := s.inner.HandleWebhook(ctx, input)
	if err != nil {
		if errors.Is(err, checkoutports.ErrMissingSignature) || errors.Is(err, checkoutports.ErrInvalidSignature) {
			s.metrics.recordRejected(ctx, input.Provider)
		}
		return nil, s.handleError(ctx, span, err, "webhook handling failed", slog.String("provider", input.Provider))
	}
	span.SetAttributes(attribute.String("webhook.event_type", result.EventType), attribute.Bool("webhook.ignored", result.Ignored))
	if result.Ignored {
		s.logInfo(ctx, "webhook event ignored", slog.String("provider", result.Provider), slog.String("event.type", result.EventType))
		return result, nil
	}
	if !result.Replayed {
		s.metrics.recordMaterialized(ctx, result.Provider)
	}
	s.logInfo(ctx, "webhook payment recorded",
		slog.String("provider", result.Provider),
		slog.String("order.id", result.OrderID),
		slog.Bool("replayed", result.Replayed),
	)
	return result, nil
}

func (s *Service) Providers() []string {
	return s.inner.Providers()
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
	checkouts    metric.Int64Counter
	materialized metric.Int64Counter
	rejected     metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	checkouts, _ := m.Int64Counter("checkout.service.checkouts", metric.WithDescription("Number of successful checkouts by strategy"))
	materialized, _ := m.Int64Counter("checkout.service.orders_materialized", metric.WithDescription("Number of orders created from payment webhooks"))
	rejected, _ := m.Int64Counter("checkout.service.webhooks_rejected", metric.WithDescription("Number of webhooks with a missing or invalid signature"))
	return serviceMetrics{checkouts: checkouts, materialized: materialized, rejected: rejected}
}

func (m serviceMetrics) recordCheckout(ctx context.Context, strategy string) {
	if m.checkouts != nil {
		m.checkouts.Add(ctx, 1, metric.WithAttributes(attribute.String("checkout.strategy", strategy)))
	}
}

func (m serviceMetrics) recordMaterialized(ctx context.Context, provider string) {
	if m.materialized != nil {
		m.materialized.Add(ctx, 1, metric.WithAttributes(attribute.String("payment.provider", provider)))
	}
}

func (m serviceMetrics) recordRejected(ctx context.Context, provider string) {
	if m.rejected != nil {
		m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("payment.provider", provider)))
	}
}

var _ checkoutports.Service = (*Service)(nil)
