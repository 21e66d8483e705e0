package mapper

import (
	"github.com/shopspring/decimal"

	"github.com/Apurer/storefront-api/internal/domains/checkout/domain"
	"github.com/Apurer/storefront-api/internal/domains/checkout/ports"
	ordersmapper "github.com/Apurer/storefront-api/internal/domains/orders/adapters/http/mapper"
	"github.com/Apurer/storefront-api/internal/shared/money"
)

// Checkout is the optional body of POST /checkout.
type Checkout struct {
	Provider string `json:"provider"`
}

// Item is a client cart line; prices sent by the client are ignored.
type Item struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// GatewaySession is the payload for POST /checkout/gateway-session.
type GatewaySession struct {
	Provider   string           `json:"provider"`
	Currency   string           `json:"currency"`
	Items      []Item           `json:"items"`
	Amount     *decimal.Decimal `json:"amount"`
	SuccessURL string           `json:"successUrl"`
	CancelURL  string           `json:"cancelUrl"`
}

func (g GatewaySession) ToInput(userID string) ports.CheckoutInput {
	input := ports.CheckoutInput{
		UserID:     userID,
		Strategy:   g.Provider,
		Currency:   g.Currency,
		Amount:     g.Amount,
		SuccessURL: g.SuccessURL,
		CancelURL:  g.CancelURL,
	}
	for _, item := range g.Items {
		input.Items = append(input.Items, domain.RequestedItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return input
}

// Session is the response for POST /checkout/gateway-session.
type Session struct {
	Provider    string  `json:"provider"`
	SessionID   string  `json:"sessionId"`
	OrderID     string  `json:"orderId,omitempty"`
	RedirectURL string  `json:"redirectUrl,omitempty"`
	Amount      float64 `json:"amount"`
	AmountMinor int64   `json:"amountMinor"`
	Currency    string  `json:"currency"`
}

func FromSession(session *ports.Session) Session {
	if session == nil {
		return Session{}
	}
	return Session{
		Provider:    session.Provider,
		SessionID:   session.SessionID,
		OrderID:     session.OrderID,
		RedirectURL: session.RedirectURL,
		Amount:      money.FromMinorUnits(session.AmountMinor, session.Currency).InexactFloat64(),
		AmountMinor: session.AmountMinor,
		Currency:    string(session.Currency),
	}
}

// CheckoutResponse is returned by POST /checkout; exactly one of Order and Session is set.
type CheckoutResponse struct {
	Order   *ordersmapper.Order `json:"order,omitempty"`
	Session *Session            `json:"session,omitempty"`
}

func FromResult(result *ports.CheckoutResult) CheckoutResponse {
	var out CheckoutResponse
	if result == nil {
		return out
	}
	if result.Order != nil {
		order := ordersmapper.FromDomainOrder(result.Order)
		out.Order = &order
	}
	if result.Session != nil {
		session := FromSession(result.Session)
		out.Session = &session
	}
	return out
}

// WebhookAck is the body every accepted webhook receives.
type WebhookAck struct {
	Received bool `json:"received"`
}
