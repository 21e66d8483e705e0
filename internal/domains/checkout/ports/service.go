package ports

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	cartdomain "github.com/Apurer/storefront-api/internal/domains/cart/domain"
	"github.com/Apurer/storefront-api/internal/domains/checkout/domain"
	ordersdomain "github.com/Apurer/storefront-api/internal/domains/orders/domain"
)

// StrategyImmediate creates the order synchronously from the server cart.
const StrategyImmediate = "immediate"

// CheckoutInput selects a strategy and carries the client's view of the cart.
type CheckoutInput struct {
	UserID string
	// Strategy is "immediate" or a gateway provider name; empty selects the default.
	Strategy string
	Currency string
	// Items overrides the server cart for deferred checkout. Prices are re-resolved.
	Items []domain.RequestedItem
	// Amount, when set, must equal the server-computed total in Currency.
	Amount     *decimal.Decimal
	SuccessURL string
	CancelURL  string
}

// CheckoutResult holds either a finished order or a pending gateway session.
type CheckoutResult struct {
	Strategy string
	Order    *ordersdomain.Order
	Session  *Session
}

// WebhookInput is the raw, unverified webhook request.
type WebhookInput struct {
	Provider string
	Payload  []byte
	Header   http.Header
}

// WebhookResult reports what a verified webhook did.
type WebhookResult struct {
	Provider  string
	EventType string
	Ignored   bool
	OrderID   string
	Replayed  bool
}

// MaterializeResult reports the order a completed payment produced.
type MaterializeResult struct {
	OrderID  string `json:"orderId"`
	Replayed bool   `json:"replayed"`
}

// ConfirmationStrategy is one way of turning a cart into a paid order.
type ConfirmationStrategy interface {
	Name() string
	Confirm(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
}

// OrderMaterializer turns a verified payment event into an order, at most once per payment.
type OrderMaterializer interface {
	Materialize(ctx context.Context, event domain.GatewayEvent) (*MaterializeResult, error)
}

// PaymentRecorder is the synchronous unit of work behind every materializer.
type PaymentRecorder interface {
	Record(ctx context.Context, event domain.GatewayEvent) (*MaterializeResult, error)
}

// ProductLookup resolves products from the authoritative catalog.
type ProductLookup interface {
	GetMany(ctx context.Context, ids []string) (map[string]*catalogdomain.Product, error)
}

// CartReader exposes the catalog-resolved server cart.
type CartReader interface {
	Snapshot(ctx context.Context, userID string) ([]*cartdomain.Item, error)
}

// Service is the checkout orchestrator.
type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
	// OpenSession creates a gateway session without ever committing an order.
	OpenSession(ctx context.Context, input CheckoutInput) (*Session, error)
	HandleWebhook(ctx context.Context, input WebhookInput) (*WebhookResult, error)
	// Providers lists the registered gateway names.
	Providers() []string
}
