package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/Apurer/storefront-api/internal/domains/checkout/domain"
	"github.com/Apurer/storefront-api/internal/domains/checkout/ports"
	"github.com/Apurer/storefront-api/internal/shared/money"
)

// DeferredStrategy opens a gateway session; the order is created later from the verified webhook.
// The server cart is left untouched.
type DeferredStrategy struct {
	gateway  ports.PaymentGateway
	carts    ports.CartReader
	products ports.ProductLookup
}

func NewDeferredStrategy(gateway ports.PaymentGateway, carts ports.CartReader, products ports.ProductLookup) *DeferredStrategy {
	return &DeferredStrategy{gateway: gateway, carts: carts, products: products}
}

func (s *DeferredStrategy) Name() string { return s.gateway.Provider() }

func (s *DeferredStrategy) Confirm(ctx context.Context, input ports.CheckoutInput) (*ports.CheckoutResult, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, mapError(domain.ErrEmptyUserID)
	}
	currency, err := s.chargeCurrency(input.Currency)
	if err != nil {
		return nil, mapError(err)
	}
	snapshot, err := resolveSnapshot(ctx, s.products, s.carts, userID, input.Items)
	if err != nil {
		return nil, mapError(err)
	}
	if input.Amount != nil {
		expected := snapshot.AmountMinor(currency)
		if got := money.MajorToMinorUnits(*input.Amount, currency); got != expected {
			return nil, mapError(fmt.Errorf("%w: got %s, expected %s", domain.ErrAmountMismatch,
				money.FromMinorUnits(got, currency).String(), money.FromMinorUnits(expected, currency).String()))
		}
	}
	session, err := s.gateway.CreateSession(ctx, ports.SessionRequest{
		UserID:      userID,
		Currency:    currency,
		Snapshot:    snapshot,
		AmountMinor: snapshot.AmountMinor(currency),
		SuccessURL:  input.SuccessURL,
		CancelURL:   input.CancelURL,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &ports.CheckoutResult{Strategy: s.Name(), Session: session}, nil
}

// chargeCurrency resolves the currency to charge in. A blank request uses the base
// currency, or the gateway's settlement currency when it cannot charge the base one.
// A currency the gateway does not accept is rejected rather than substituted.
func (s *DeferredStrategy) chargeCurrency(raw string) (money.Currency, error) {
	requested, err := money.Parse(raw)
	if err != nil {
		return "", err
	}
	accepted := s.gateway.Currencies()
	if len(accepted) == 0 {
		return requested, nil
	}
	for _, c := range accepted {
		if c == requested {
			return requested, nil
		}
	}
	if strings.TrimSpace(raw) == "" {
		return accepted[0], nil
	}
	return "", fmt.Errorf("%w: %s does not charge %s", money.ErrUnsupportedCurrency, s.gateway.Provider(), requested)
}

var _ ports.ConfirmationStrategy = (*DeferredStrategy)(nil)
