package application

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartmemory "github.com/Apurer/storefront-api/internal/domains/cart/adapters/memory"
	cartapp "github.com/Apurer/storefront-api/internal/domains/cart/application"
	catalogmemory "github.com/Apurer/storefront-api/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	ordersmemory "github.com/Apurer/storefront-api/internal/domains/orders/adapters/memory"
	ordersdomain "github.com/Apurer/storefront-api/internal/domains/orders/domain"

	"github.com/Apurer/storefront-api/internal/domains/checkout/adapters/memory"
	"github.com/Apurer/storefront-api/internal/domains/checkout/domain"
	"github.com/Apurer/storefront-api/internal/domains/checkout/ports"
	"github.com/Apurer/storefront-api/internal/shared/money"
)

const testSignatureHeader = "X-Test-Signature"

type fakeGateway struct {
	name       string
	currencies []money.Currency
	requests   []ports.SessionRequest
	event      *domain.GatewayEvent
}

func (g *fakeGateway) Provider() string { return g.name }

func (g *fakeGateway) Currencies() []money.Currency { return g.currencies }

func (g *fakeGateway) CreateSession(_ context.Context, req ports.SessionRequest) (*ports.Session, error) {
	g.requests = append(g.requests, req)
	return &ports.Session{
		Provider:    g.name,
		SessionID:   "sess_1",
		RedirectURL: "https://pay.example/sess_1",
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
	}, nil
}

func (g *fakeGateway) ParseWebhook(_ context.Context, _ []byte, header http.Header) (*domain.GatewayEvent, error) {
	switch header.Get(testSignatureHeader) {
	case "":
		return nil, ports.ErrMissingSignature
	case "ok":
		event := *g.event
		return &event, nil
	default:
		return nil, ports.ErrInvalidSignature
	}
}

type checkoutFixture struct {
	svc     *Service
	catalog *catalogmemory.Repository
	carts   *cartapp.Service
	orders  *ordersmemory.Repository
	gateway *fakeGateway
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	ctx := context.Background()

	catalog := catalogmemory.NewRepository()
	for id, price := range map[string]string{"p-backpack": "79.99", "p-plush": "29.99"} {
		product, err := catalogdomain.NewProduct(id, id, decimal.RequireFromString(price))
		require.NoError(t, err)
		_, err = catalog.Save(ctx, product)
		require.NoError(t, err)
	}

	cartRepo := cartmemory.NewRepository()
	orders := ordersmemory.NewRepository()
	ledger := memory.NewLedger(cartRepo, orders, memory.NewIdempotencyStore())
	carts := cartapp.NewService(cartRepo, catalog)
	gateway := &fakeGateway{
		name: "fakepay",
		event: &domain.GatewayEvent{
			Provider:    "fakepay",
			EventID:     "evt_1",
			Type:        "payment.succeeded",
			Kind:        domain.EventPaymentCompleted,
			SessionID:   "sess_1",
			UserID:      "u1",
			Currency:    "USD",
			AmountMinor: 15998,
			Items: []domain.EventItem{
				{ProductID: "p-backpack", Quantity: 2, UnitPrice: decimal.RequireFromString("79.99")},
			},
		},
	}
	recorder := NewRecorder(ledger)
	svc := NewService(ledger, carts, catalog, inlineMaterializer{recorder}, WithGateway(gateway))
	return &checkoutFixture{svc: svc, catalog: catalog, carts: carts, orders: orders, gateway: gateway}
}

type inlineMaterializer struct {
	recorder ports.PaymentRecorder
}

func (m inlineMaterializer) Materialize(ctx context.Context, event domain.GatewayEvent) (*ports.MaterializeResult, error) {
	return m.recorder.Record(ctx, event)
}

func (f *checkoutFixture) signed(tag string) http.Header {
	header := http.Header{}
	if tag != "" {
		header.Set(testSignatureHeader, tag)
	}
	return header
}

func TestCheckout_ImmediateCreatesOrderAndClearsCart(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "u1", "p-backpack", 2)
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, "u1", "p-plush", 1)
	require.NoError(t, err)

	result, err := f.svc.Checkout(ctx, ports.CheckoutInput{UserID: "u1"})
	require.NoError(t, err)
	require.NotNil(t, result.Order)
	assert.Equal(t, ports.StrategyImmediate, result.Strategy)
	assert.Equal(t, ordersdomain.StatusConfirmed, result.Order.Status)
	assert.True(t, result.Order.Total.Equal(decimal.RequireFromString("189.97")))
	for _, item := range result.Order.Items {
		assert.NotNil(t, item.Product)
	}

	cart, err := f.carts.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCheckout_ImmediateRejectsEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.svc.Checkout(context.Background(), ports.CheckoutInput{UserID: "u1"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)

	orders, err := f.orders.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckout_ImmediateDropsLinesForRemovedProducts(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "u1", "p-backpack", 1)
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, "u1", "p-plush", 2)
	require.NoError(t, err)
	plush, err := f.catalog.GetByID(ctx, "p-plush")
	require.NoError(t, err)
	require.NoError(t, f.catalog.ReplaceAll(ctx, []*catalogdomain.Product{plush}))

	result, err := f.svc.Checkout(ctx, ports.CheckoutInput{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, result.Order.Items, 1)
	assert.Equal(t, "p-plush", result.Order.Items[0].ProductID)
	assert.True(t, result.Order.Total.Equal(decimal.RequireFromString("59.98")))

	cart, err := f.carts.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCheckout_ImmediateRejectsCartOfRemovedProducts(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "u1", "p-backpack", 1)
	require.NoError(t, err)
	require.NoError(t, f.catalog.ReplaceAll(ctx, nil))

	_, err = f.svc.Checkout(ctx, ports.CheckoutInput{UserID: "u1"})
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
	orders, err := f.orders.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckout_UnknownProvider(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.svc.Checkout(context.Background(), ports.CheckoutInput{UserID: "u1", Strategy: "paypal"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestCheckout_DeferredKeepsCartAndPricesFromCatalog(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "u1", "p-backpack", 1)
	require.NoError(t, err)

	result, err := f.svc.Checkout(ctx, ports.CheckoutInput{UserID: "u1", Strategy: "FakePay", Currency: "eur"})
	require.NoError(t, err)
	require.NotNil(t, result.Session)
	assert.Nil(t, result.Order)
	assert.Equal(t, money.EUR, result.Session.Currency)
	assert.EqualValues(t, 7279, result.Session.AmountMinor)

	require.Len(t, f.gateway.requests, 1)
	lines := f.gateway.requests[0].Snapshot.Lines
	require.Len(t, lines, 1)
	assert.True(t, lines[0].UnitPrice.Equal(decimal.RequireFromString("79.99")))

	cart, err := f.carts.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestCheckout_DeferredUsesRequestedItemsAndChecksAmount(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	items := []domain.RequestedItem{{ProductID: "p-plush", Quantity: 1}, {ProductID: "p-plush", Quantity: 1}}

	wrong := decimal.RequireFromString("10.00")
	_, err := f.svc.Checkout(ctx, ports.CheckoutInput{UserID: "u1", Strategy: "fakepay", Items: items, Amount: &wrong})
	assert.ErrorIs(t, err, domain.ErrAmountMismatch)
	assert.Empty(t, f.gateway.requests)

	right := decimal.RequireFromString("59.98")
	result, err := f.svc.Checkout(ctx, ports.CheckoutInput{UserID: "u1", Strategy: "fakepay", Items: items, Amount: &right})
	require.NoError(t, err)
	assert.EqualValues(t, 5998, result.Session.AmountMinor)
	require.Len(t, f.gateway.requests[0].Snapshot.Lines, 1)
	assert.Equal(t, 2, f.gateway.requests[0].Snapshot.Lines[0].Quantity)
}

func TestCheckout_DeferredDefaultsToGatewayCurrency(t *testing.T) {
	f := newCheckoutFixture(t)
	f.gateway.currencies = []money.Currency{money.IDR}
	items := []domain.RequestedItem{{ProductID: "p-plush", Quantity: 1}}

	result, err := f.svc.Checkout(context.Background(), ports.CheckoutInput{UserID: "u1", Strategy: "fakepay", Items: items})
	require.NoError(t, err)
	assert.Equal(t, money.IDR, result.Session.Currency)
	assert.EqualValues(t, 467844, result.Session.AmountMinor)
}

func TestCheckout_DeferredRejectsCurrencyGatewayCannotCharge(t *testing.T) {
	f := newCheckoutFixture(t)
	f.gateway.currencies = []money.Currency{money.IDR}
	items := []domain.RequestedItem{{ProductID: "p-plush", Quantity: 1}}

	_, err := f.svc.Checkout(context.Background(), ports.CheckoutInput{UserID: "u1", Strategy: "fakepay", Currency: "USD", Items: items})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, money.ErrUnsupportedCurrency)
	assert.Empty(t, f.gateway.requests)
}

func TestOpenSession_NeverCommitsOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "u1", "p-plush", 2)
	require.NoError(t, err)

	_, err = f.svc.OpenSession(ctx, ports.CheckoutInput{UserID: "u1", Strategy: ports.StrategyImmediate})
	assert.ErrorIs(t, err, ErrUnknownProvider)

	session, err := f.svc.OpenSession(ctx, ports.CheckoutInput{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "fakepay", session.Provider)
	assert.EqualValues(t, 5998, session.AmountMinor)

	orders, err := f.orders.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, orders)
	cart, err := f.carts.GetCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestCheckout_DeferredRejectsUnknownProduct(t *testing.T) {
	f := newCheckoutFixture(t)
	items := []domain.RequestedItem{{ProductID: "p-missing", Quantity: 1}}

	_, err := f.svc.Checkout(context.Background(), ports.CheckoutInput{UserID: "u1", Strategy: "fakepay", Items: items})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, domain.ErrUnknownProduct)
}

func TestHandleWebhook_DuplicateDeliveryCreatesOneOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	input := ports.WebhookInput{Provider: "fakepay", Payload: []byte(`{}`), Header: f.signed("ok")}

	first, err := f.svc.HandleWebhook(ctx, input)
	require.NoError(t, err)
	assert.False(t, first.Replayed)
	assert.NotEmpty(t, first.OrderID)

	second, err := f.svc.HandleWebhook(ctx, input)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.OrderID, second.OrderID)

	orders, err := f.orders.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	order := orders[0]
	assert.Equal(t, ordersdomain.StatusCompleted, order.Status)
	assert.Equal(t, "sess_1", order.GatewaySessionID)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("159.98")))
	require.NotNil(t, order.Charged)
	assert.True(t, order.Charged.Amount.Equal(decimal.RequireFromString("159.98")))
}

func TestHandleWebhook_ConflictingReplay(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	input := ports.WebhookInput{Provider: "fakepay", Header: f.signed("ok")}

	_, err := f.svc.HandleWebhook(ctx, input)
	require.NoError(t, err)

	f.gateway.event.Items[0].Quantity = 3
	_, err = f.svc.HandleWebhook(ctx, input)
	assert.ErrorIs(t, err, ports.ErrIdempotencyConflict)
}

func TestHandleWebhook_IgnoredEvents(t *testing.T) {
	f := newCheckoutFixture(t)
	f.gateway.event.Kind = domain.EventIgnored
	f.gateway.event.Type = "charge.refunded"

	result, err := f.svc.HandleWebhook(context.Background(), ports.WebhookInput{Header: f.signed("ok")})
	require.NoError(t, err)
	assert.True(t, result.Ignored)
	assert.Equal(t, "charge.refunded", result.EventType)

	orders, err := f.orders.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestHandleWebhook_SignatureFailures(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := f.svc.HandleWebhook(ctx, ports.WebhookInput{Provider: "fakepay", Header: f.signed("")})
	assert.ErrorIs(t, err, ports.ErrMissingSignature)

	_, err = f.svc.HandleWebhook(ctx, ports.WebhookInput{Provider: "fakepay", Header: f.signed("forged")})
	assert.ErrorIs(t, err, ports.ErrInvalidSignature)

	_, err = f.svc.HandleWebhook(ctx, ports.WebhookInput{Provider: "unknown", Header: f.signed("ok")})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestHandleWebhook_MalformedCompletedEvent(t *testing.T) {
	f := newCheckoutFixture(t)
	f.gateway.event.Items = nil

	_, err := f.svc.HandleWebhook(context.Background(), ports.WebhookInput{Provider: "fakepay", Header: f.signed("ok")})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.True(t, errors.Is(err, domain.ErrMalformedEvent))
}

func TestProviders(t *testing.T) {
	f := newCheckoutFixture(t)
	assert.Equal(t, []string{"fakepay"}, f.svc.Providers())
}
