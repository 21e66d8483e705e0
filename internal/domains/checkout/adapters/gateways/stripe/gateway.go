// Package stripe adapts Stripe Checkout Sessions to the checkout gateway port.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	stripesdk "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/Apurer/storefront-api/internal/domains/checkout/domain"
	"github.com/Apurer/storefront-api/internal/domains/checkout/ports"
	ordersdomain "github.com/Apurer/storefront-api/internal/domains/orders/domain"
	"github.com/Apurer/storefront-api/internal/shared/money"
)

const (
	Provider        = "stripe"
	SignatureHeader = "Stripe-Signature"
)

// Limits reflects Stripe's 500-character metadata values and 50 keys per object.
var Limits = domain.MetadataLimits{ValueLimit: 500, MaxParts: 40}

// Config carries the Stripe credentials and redirect targets.
type Config struct {
	SecretKey     string
	WebhookSecret string
	// AppURL is used to build default success and cancel URLs.
	AppURL            string
	ShippingCountries []string
}

// Gateway creates Checkout Sessions and verifies Stripe webhooks.
type Gateway struct {
	api    *client.API
	config Config
}

func New(config Config) *Gateway {
	return &Gateway{api: client.New(config.SecretKey, nil), config: config}
}

func (g *Gateway) Provider() string { return Provider }

func (g *Gateway) Currencies() []money.Currency { return nil }

// CreateSession opens a hosted Checkout Session priced per line in req.Currency.
func (g *Gateway) CreateSession(ctx context.Context, req ports.SessionRequest) (*ports.Session, error) {
	params, err := g.sessionParams(req)
	if err != nil {
		return nil, err
	}
	params.Context = ctx
	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: stripe: %w", ports.ErrGateway, err)
	}
	return &ports.Session{
		Provider:    Provider,
		SessionID:   session.ID,
		RedirectURL: session.URL,
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
	}, nil
}

func (g *Gateway) sessionParams(req ports.SessionRequest) (*stripesdk.CheckoutSessionParams, error) {
	meta, err := domain.PackMetadata(req.UserID, string(req.Currency), req.Snapshot.Lines, Limits)
	if err != nil {
		return nil, err
	}
	successURL := req.SuccessURL
	if successURL == "" {
		successURL = strings.TrimRight(g.config.AppURL, "/") + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = strings.TrimRight(g.config.AppURL, "/") + "/cart"
	}
	params := &stripesdk.CheckoutSessionParams{
		Mode:              stripesdk.String(string(stripesdk.CheckoutSessionModePayment)),
		SuccessURL:        stripesdk.String(successURL),
		CancelURL:         stripesdk.String(cancelURL),
		ClientReferenceID: stripesdk.String(req.UserID),
	}
	for _, line := range req.Snapshot.Lines {
		product := &stripesdk.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripesdk.String(line.Title),
		}
		if line.Image != "" {
			product.Images = stripesdk.StringSlice([]string{line.Image})
		}
		params.LineItems = append(params.LineItems, &stripesdk.CheckoutSessionLineItemParams{
			PriceData: &stripesdk.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripesdk.String(req.Currency.Lower()),
				ProductData: product,
				UnitAmount:  stripesdk.Int64(line.UnitMinor(req.Currency)),
			},
			Quantity: stripesdk.Int64(int64(line.Quantity)),
		})
	}
	if len(g.config.ShippingCountries) > 0 {
		params.ShippingAddressCollection = &stripesdk.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripesdk.StringSlice(g.config.ShippingCountries),
		}
	}
	for key, value := range meta {
		params.AddMetadata(key, value)
	}
	return params, nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes checkout session events.
func (g *Gateway) ParseWebhook(_ context.Context, payload []byte, header http.Header) (*domain.GatewayEvent, error) {
	signature := header.Get(SignatureHeader)
	if strings.TrimSpace(signature) == "" {
		return nil, ports.ErrMissingSignature
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.config.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrInvalidSignature, err)
	}

	result := &domain.GatewayEvent{
		Provider: Provider,
		EventID:  event.ID,
		Type:     string(event.Type),
		Kind:     domain.EventIgnored,
	}
	if event.Data == nil {
		return result, nil
	}
	var session checkoutSession
	switch event.Type {
	case "checkout.session.completed":
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, errors.Join(domain.ErrMalformedEvent, err)
		}
		// Delayed payment methods complete the session before the money arrives.
		if session.PaymentStatus != "paid" && session.PaymentStatus != "no_payment_required" {
			return result, nil
		}
	case "checkout.session.async_payment_succeeded":
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, errors.Join(domain.ErrMalformedEvent, err)
		}
	default:
		return result, nil
	}

	meta, err := domain.UnpackMetadata(session.Metadata)
	if err != nil {
		return nil, err
	}
	result.Kind = domain.EventPaymentCompleted
	result.SessionID = session.ID
	result.PaymentIntentID = session.PaymentIntent.ID
	result.UserID = meta.UserID
	if result.UserID == "" {
		result.UserID = session.ClientReferenceID
	}
	result.Currency = strings.ToUpper(session.Currency)
	if result.Currency == "" {
		result.Currency = meta.Currency
	}
	result.AmountMinor = session.AmountTotal
	result.Items = meta.Items
	result.Shipping = session.shippingAddress()
	return result, nil
}

// checkoutSession decodes only the Checkout Session fields the order needs.
type checkoutSession struct {
	ID                string            `json:"id"`
	PaymentStatus     string            `json:"payment_status"`
	PaymentIntent     expandableID      `json:"payment_intent"`
	AmountTotal       int64             `json:"amount_total"`
	Currency          string            `json:"currency"`
	ClientReferenceID string            `json:"client_reference_id"`
	Metadata          map[string]string `json:"metadata"`
	ShippingDetails   *shippingDetails  `json:"shipping_details"`
	CustomerDetails   *shippingDetails  `json:"customer_details"`
}

type shippingDetails struct {
	Name    string         `json:"name"`
	Address *stripeAddress `json:"address"`
}

type stripeAddress struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func (s checkoutSession) shippingAddress() *ordersdomain.Address {
	details := s.ShippingDetails
	if details == nil || details.Address == nil {
		details = s.CustomerDetails
	}
	if details == nil || details.Address == nil {
		return nil
	}
	addr := details.Address
	return &ordersdomain.Address{
		Name:       details.Name,
		Line1:      addr.Line1,
		Line2:      addr.Line2,
		City:       addr.City,
		State:      addr.State,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
	}
}

// expandableID accepts either an id string or an expanded object with an id.
type expandableID struct {
	ID string
}

func (e *expandableID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &e.ID)
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	e.ID = obj.ID
	return nil
}

var _ ports.PaymentGateway = (*Gateway)(nil)
