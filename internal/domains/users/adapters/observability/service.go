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

	userapp "github.com/Apurer/storefront-api/internal/domains/users/application"
	userdomain "github.com/Apurer/storefront-api/internal/domains/users/domain"
	userports "github.com/Apurer/storefront-api/internal/domains/users/ports"
)

const tracerName = "github.com/Apurer/storefront-api/internal/domains/users/adapters/observability/service"

// Service decorates the user service with tracing, logging, and metrics.
type Service struct {
	inner   userports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core user service.
func New(inner userports.Service, opts ...Option) userports.Service {
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

func (s *Service) Register(ctx context.Context, input userports.RegisterInput) (*userports.AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Register")
	defer span.End()

	result, err := s.inner.Register(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to register user")
	}
	span.SetAttributes(attribute.String("user.id", result.User.ID))
	s.metrics.recordAuth(ctx, "register", "success")
	s.logInfo(ctx, "user registered", slog.String("user.id", result.User.ID))
	return result, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*userports.AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Login")
	defer span.End()

	result, err := s.inner.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, userapp.ErrAuthentication) {
			s.metrics.recordAuth(ctx, "login", "rejected")
			s.logInfo(ctx, "login rejected")
			span.SetStatus(codes.Error, "invalid credentials")
			return nil, err
		}
		return nil, s.handleError(ctx, span, err, "failed to log in")
	}
	span.SetAttributes(attribute.String("user.id", result.User.ID))
	s.metrics.recordAuth(ctx, "login", "success")
	s.logInfo(ctx, "user logged in", slog.String("user.id", result.User.ID))
	return result, nil
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "UserService.Logout")
	defer span.End()

	if err := s.inner.Logout(ctx, sessionID); err != nil {
		return s.handleError(ctx, span, err, "failed to log out")
	}
	s.metrics.recordAuth(ctx, "logout", "success")
	return nil
}

// Authenticate runs on every protected request, so only unexpected failures are logged.
func (s *Service) Authenticate(ctx context.Context, token string) (*userdomain.Session, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Authenticate")
	defer span.End()

	session, err := s.inner.Authenticate(ctx, token)
	if err != nil {
		if errors.Is(err, userapp.ErrAuthentication) {
			span.SetStatus(codes.Error, "unauthenticated")
			return nil, err
		}
		return nil, s.handleError(ctx, span, err, "failed to authenticate")
	}
	span.SetAttributes(attribute.String("user.id", session.UserID))
	return session, nil
}

func (s *Service) Me(ctx context.Context, userID string) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Me", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	user, err := s.inner.Me(ctx, userID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load user", slog.String("user.id", userID))
	}
	return user, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

type serviceMetrics struct {
	auth metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	auth, _ := m.Int64Counter("users.service.auth_events", metric.WithDescription("Authentication events by kind and result"))
	return serviceMetrics{auth: auth}
}

func (m serviceMetrics) recordAuth(ctx context.Context, kind, result string) {
	if m.auth != nil {
		m.auth.Add(ctx, 1, metric.WithAttributes(
			attribute.String("auth.kind", kind),
			attribute.String("auth.result", result),
		))
	}
}

var _ userports.Service = (*Service)(nil)
