package ports

import (
	"context"
	"errors"
	"net/http"

	"github.com/Apurer/storefront-api/internal/domains/checkout/domain"
	"github.com/Apurer/storefront-api/internal/shared/money"
)

var (
	ErrMissingSignature = errors.New("webhook signature is missing")
	ErrInvalidSignature = errors.New("webhook signature is invalid")
	// ErrGateway wraps failures talking to the payment provider.
	ErrGateway = errors.New("payment gateway error")
)

// SessionRequest is everything a gateway needs to open a hosted payment.
type SessionRequest struct {
	UserID      string
	Currency    money.Currency
	Snapshot    domain.Snapshot
	AmountMinor int64
	SuccessURL  string
	CancelURL   string
}

// Session is the provider's handle for a pending payment.
type Session struct {
	Provider    string
	SessionID   string
	OrderID     string
	RedirectURL string
	AmountMinor int64
	Currency    money.Currency
}

// PaymentGateway is implemented once per provider (Stripe, Razorpay, Midtrans).
type PaymentGateway interface {
	Provider() string
	// Currencies lists what the provider can charge in; nil means any supported currency.
	Currencies() []money.Currency
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	// ParseWebhook verifies the signature and decodes the payload.
	ParseWebhook(ctx context.Context, payload []byte, header http.Header) (*domain.GatewayEvent, error)
}
