package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Apurer/storefront-api/internal/domains/checkout/domain"
	"github.com/Apurer/storefront-api/internal/domains/checkout/ports"
)

// Service routes checkouts to a confirmation strategy and webhooks to their gateway.
type Service struct {
	strategies      map[string]ports.ConfirmationStrategy
	gateways        map[string]ports.PaymentGateway
	materializer    ports.OrderMaterializer
	carts           ports.CartReader
	products        ports.ProductLookup
	defaultStrategy string
}

type Option func(*Service)

// WithGateway registers a provider and its deferred strategy.
func WithGateway(gateway ports.PaymentGateway) Option {
	return func(s *Service) {
		if gateway == nil {
			return
		}
		name := strings.ToLower(gateway.Provider())
		s.gateways[name] = gateway
		s.strategies[name] = NewDeferredStrategy(gateway, s.carts, s.products)
	}
}

// WithDefaultStrategy selects the strategy used when a request names none.
func WithDefaultStrategy(name string) Option {
	return func(s *Service) {
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
			s.defaultStrategy = name
		}
	}
}

func NewService(ledger ports.Ledger, carts ports.CartReader, products ports.ProductLookup, materializer ports.OrderMaterializer, opts ...Option) *Service {
	s := &Service{
		strategies:      map[string]ports.ConfirmationStrategy{},
		gateways:        map[string]ports.PaymentGateway{},
		materializer:    materializer,
		carts:           carts,
		products:        products,
		defaultStrategy: ports.StrategyImmediate,
	}
	immediate := NewImmediateStrategy(ledger, products)
	s.strategies[immediate.Name()] = immediate
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) Checkout(ctx context.Context, input ports.CheckoutInput) (*ports.CheckoutResult, error) {
	name := strings.ToLower(strings.TrimSpace(input.Strategy))
	if name == "" {
		name = s.defaultStrategy
	}
	strategy, ok := s.strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return strategy.Confirm(ctx, input)
}

// OpenSession runs a deferred strategy only. Without a provider it picks the
// default gateway, or the only gateway registered; it never falls back to immediate.
func (s *Service) OpenSession(ctx context.Context, input ports.CheckoutInput) (*ports.Session, error) {
	gateway, err := s.resolveGateway(input.Strategy)
	if err != nil {
		return nil, err
	}
	name := strings.ToLower(gateway.Provider())
	input.Strategy = name
	result, err := s.strategies[name].Confirm(ctx, input)
	if err != nil {
		return nil, err
	}
	if result.Session == nil {
		return nil, fmt.Errorf("provider %q returned no payment session", name)
	}
	return result.Session, nil
}

func (s *Service) HandleWebhook(ctx context.Context, input ports.WebhookInput) (*ports.WebhookResult, error) {
	gateway, err := s.resolveGateway(input.Provider)
	if err != nil {
		return nil, err
	}
	event, err := gateway.ParseWebhook(ctx, input.Payload, input.Header)
	if err != nil {
		return nil, mapError(err)
	}
	result := &ports.WebhookResult{Provider: gateway.Provider(), EventType: event.Type}
	if event.Kind != domain.EventPaymentCompleted {
		result.Ignored = true
		return result, nil
	}
	if s.materializer == nil {
		return nil, errors.New("order materializer not configured")
	}
	materialized, err := s.materializer.Materialize(ctx, *event)
	if err != nil {
		return nil, mapError(err)
	}
	result.OrderID = materialized.OrderID
	result.Replayed = materialized.Replayed
	return result, nil
}

func (s *Service) Providers() []string {
	names := make([]string, 0, len(s.gateways))
	for name := range s.gateways {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolveGateway maps a provider name to its gateway; without a name it uses the
// default strategy's gateway, or the only gateway registered.
func (s *Service) resolveGateway(provider string) (ports.PaymentGateway, error) {
	name := strings.ToLower(strings.TrimSpace(provider))
	if name == "" {
		if _, ok := s.gateways[s.defaultStrategy]; ok {
			name = s.defaultStrategy
		} else if len(s.gateways) == 1 {
			for only := range s.gateways {
				name = only
			}
		}
	}
	gateway, ok := s.gateways[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return gateway, nil
}

var _ ports.Service = (*Service)(nil)
