// Package midtrans adapts Midtrans Snap to the checkout gateway port. Snap charges in IDR only.
package midtrans

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	midtranssdk "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"

	"github.com/Apurer/storefront-api/internal/domains/checkout/domain"
	"github.com/Apurer/storefront-api/internal/domains/checkout/ports"
	"github.com/Apurer/storefront-api/internal/shared/money"
)

const Provider = "midtrans"

// Limits maps the snapshot onto Snap's three 255-character custom fields.
var Limits = domain.MetadataLimits{ValueLimit: 255, MaxParts: 1}

const maxItemName = 50

type Config struct {
	ServerKey  string
	Production bool
	FinishURL  string
}

type transactionCreator interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtranssdk.Error)
}

// Gateway opens Snap transactions and verifies HTTP notifications.
type Gateway struct {
	snap   transactionCreator
	config Config
}

func New(config Config) *Gateway {
	env := midtranssdk.Sandbox
	if config.Production {
		env = midtranssdk.Production
	}
	var client snap.Client
	client.New(config.ServerKey, env)
	return &Gateway{snap: &client, config: config}
}

func (g *Gateway) Provider() string { return Provider }

func (g *Gateway) Currencies() []money.Currency { return []money.Currency{money.IDR} }

func (g *Gateway) CreateSession(_ context.Context, req ports.SessionRequest) (*ports.Session, error) {
	if req.Currency != money.IDR {
		return nil, fmt.Errorf("%w: midtrans charges IDR, got %s", money.ErrUnsupportedCurrency, req.Currency)
	}
	request, err := g.snapRequest(req)
	if err != nil {
		return nil, err
	}
	resp, midErr := g.snap.CreateTransaction(request)
	if midErr != nil {
		return nil, fmt.Errorf("%w: midtrans: %s", ports.ErrGateway, midErr.Message)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: midtrans: empty response", ports.ErrGateway)
	}
	orderID := request.TransactionDetails.OrderID
	return &ports.Session{
		Provider:    Provider,
		SessionID:   orderID,
		OrderID:     orderID,
		RedirectURL: resp.RedirectURL,
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
	}, nil
}

func (g *Gateway) snapRequest(req ports.SessionRequest) (*snap.Request, error) {
	meta, err := domain.PackMetadata(req.UserID, string(req.Currency), req.Snapshot.Lines, Limits)
	if err != nil {
		return nil, err
	}
	items := make([]midtranssdk.ItemDetails, 0, len(req.Snapshot.Lines))
	for _, line := range req.Snapshot.Lines {
		name := line.Title
		if len(name) > maxItemName {
			name = name[:maxItemName]
		}
		items = append(items, midtranssdk.ItemDetails{
			ID:    line.ProductID,
			Name:  name,
			Price: line.UnitMinor(req.Currency),
			Qty:   int32(line.Quantity),
		})
	}
	request := &snap.Request{
		TransactionDetails: midtranssdk.TransactionDetails{
			OrderID:  "SF-" + uuid.NewString(),
			GrossAmt: req.AmountMinor,
		},
		Items:        &items,
		CustomField1: meta[domain.MetaUserID],
		CustomField2: meta[domain.MetaCurrency],
		CustomField3: meta[domain.MetaItems],
	}
	finish := req.SuccessURL
	if finish == "" {
		finish = g.config.FinishURL
	}
	if finish != "" {
		request.Callbacks = &snap.Callbacks{Finish: finish}
	}
	return request, nil
}

// notification is the subset of a Midtrans HTTP notification the order needs.
type notification struct {
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	Currency          string `json:"currency"`
	CustomField1      string `json:"custom_field1"`
	CustomField2      string `json:"custom_field2"`
	CustomField3      string `json:"custom_field3"`
}

// ParseWebhook checks signature_key, the SHA-512 of order_id, status_code, gross_amount and the server key.
func (g *Gateway) ParseWebhook(_ context.Context, payload []byte, _ http.Header) (*domain.GatewayEvent, error) {
	var n notification
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, errors.Join(domain.ErrMalformedEvent, err)
	}
	if strings.TrimSpace(n.SignatureKey) == "" {
		return nil, ports.ErrMissingSignature
	}
	if !g.verify(n) {
		return nil, ports.ErrInvalidSignature
	}

	result := &domain.GatewayEvent{
		Provider: Provider,
		EventID:  n.TransactionID,
		Type:     n.TransactionStatus,
		Kind:     domain.EventIgnored,
	}
	completed := n.TransactionStatus == "settlement" ||
		(n.TransactionStatus == "capture" && n.FraudStatus == "accept")
	if !completed {
		return result, nil
	}

	meta, err := domain.UnpackMetadata(map[string]string{
		domain.MetaUserID:   n.CustomField1,
		domain.MetaCurrency: n.CustomField2,
		domain.MetaItems:    n.CustomField3,
	})
	if err != nil {
		return nil, err
	}
	currency := strings.ToUpper(n.Currency)
	if currency == "" {
		currency = string(money.IDR)
	}
	gross, err := decimal.NewFromString(n.GrossAmount)
	if err != nil {
		return nil, errors.Join(domain.ErrMalformedEvent, err)
	}
	result.Kind = domain.EventPaymentCompleted
	result.SessionID = n.OrderID
	result.PaymentIntentID = n.TransactionID
	result.UserID = meta.UserID
	result.Currency = currency
	result.AmountMinor = money.MajorToMinorUnits(gross, money.Currency(currency))
	result.Items = meta.Items
	return result, nil
}

func (g *Gateway) verify(n notification) bool {
	expected := Signature(n.OrderID, n.StatusCode, n.GrossAmount, g.config.ServerKey)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(n.SignatureKey))) == 1
}

// Signature computes the hex signature_key Midtrans attaches to notifications.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

var _ ports.PaymentGateway = (*Gateway)(nil)
