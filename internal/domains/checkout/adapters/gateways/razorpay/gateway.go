// Package razorpay adapts Razorpay Orders to the checkout gateway port.
package razorpay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	razorpaysdk "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"

	"github.com/Apurer/storefront-api/internal/domains/checkout/domain"
	"github.com/Apurer/storefront-api/internal/domains/checkout/ports"
	"github.com/Apurer/storefront-api/internal/shared/money"
)

const (
	Provider        = "razorpay"
	SignatureHeader = "X-Razorpay-Signature"
	EventIDHeader   = "X-Razorpay-Event-Id"
)

// Limits reflects Razorpay's 15 notes of 256 characters each.
var Limits = domain.MetadataLimits{ValueLimit: 256, MaxParts: 12}

type Config struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
}

// orderCreator is the slice of the Razorpay SDK the gateway calls.
type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Gateway creates Razorpay orders for the hosted checkout widget and verifies webhooks.
type Gateway struct {
	orders orderCreator
	config Config
}

func New(config Config) *Gateway {
	client := razorpaysdk.NewClient(config.KeyID, config.KeySecret)
	return &Gateway{orders: client.Order, config: config}
}

func (g *Gateway) Provider() string { return Provider }

func (g *Gateway) Currencies() []money.Currency { return nil }

// CreateSession creates a Razorpay order. The browser opens checkout.js with the returned
// order id, so there is no redirect URL.
func (g *Gateway) CreateSession(_ context.Context, req ports.SessionRequest) (*ports.Session, error) {
	notes, err := domain.PackMetadata(req.UserID, string(req.Currency), req.Snapshot.Lines, Limits)
	if err != nil {
		return nil, err
	}
	noteValues := make(map[string]interface{}, len(notes))
	for k, v := range notes {
		noteValues[k] = v
	}
	resp, err := g.orders.Create(map[string]interface{}{
		"amount":   req.AmountMinor,
		"currency": string(req.Currency),
		"receipt":  uuid.NewString(),
		"notes":    noteValues,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: razorpay: %w", ports.ErrGateway, err)
	}
	orderID, _ := resp["id"].(string)
	if orderID == "" {
		return nil, fmt.Errorf("%w: razorpay: order response has no id", ports.ErrGateway)
	}
	return &ports.Session{
		Provider:    Provider,
		SessionID:   orderID,
		OrderID:     orderID,
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
	}, nil
}

// ParseWebhook verifies X-Razorpay-Signature and decodes order.paid events.
func (g *Gateway) ParseWebhook(_ context.Context, payload []byte, header http.Header) (*domain.GatewayEvent, error) {
	signature := strings.TrimSpace(header.Get(SignatureHeader))
	if signature == "" {
		return nil, ports.ErrMissingSignature
	}
	if !utils.VerifyWebhookSignature(string(payload), signature, g.config.WebhookSecret) {
		return nil, ports.ErrInvalidSignature
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, errors.Join(domain.ErrMalformedEvent, err)
	}
	result := &domain.GatewayEvent{
		Provider: Provider,
		EventID:  header.Get(EventIDHeader),
		Type:     envelope.Event,
		Kind:     domain.EventIgnored,
	}
	if envelope.Event != "order.paid" {
		return result, nil
	}
	order := envelope.Payload.Order.Entity
	payment := envelope.Payload.Payment.Entity
	if order.ID == "" {
		order.ID = payment.OrderID
	}
	meta, err := domain.UnpackMetadata(order.Notes)
	if err != nil {
		return nil, err
	}
	result.Kind = domain.EventPaymentCompleted
	result.SessionID = order.ID
	result.PaymentIntentID = payment.ID
	result.UserID = meta.UserID
	result.Currency = strings.ToUpper(order.Currency)
	if result.Currency == "" {
		result.Currency = meta.Currency
	}
	result.AmountMinor = order.AmountPaid
	if result.AmountMinor == 0 {
		result.AmountMinor = payment.Amount
	}
	result.Items = meta.Items
	return result, nil
}

type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity paymentEntity `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity orderEntity `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

type paymentEntity struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type orderEntity struct {
	ID         string `json:"id"`
	Amount     int64  `json:"amount"`
	AmountPaid int64  `json:"amount_paid"`
	Currency   string `json:"currency"`
	Notes      notes  `json:"notes"`
}

// notes decodes Razorpay notes, which arrive as [] when empty.
type notes map[string]string

func (n *notes) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || strings.HasPrefix(trimmed, "[") {
		*n = notes{}
		return nil
	}
	raw := map[string]any{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(notes, len(raw))
	for k, v := range raw {
		switch value := v.(type) {
		case string:
			out[k] = value
		default:
			out[k] = fmt.Sprint(value)
		}
	}
	*n = out
	return nil
}

var _ ports.PaymentGateway = (*Gateway)(nil)
