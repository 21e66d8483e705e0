package midtrans

import (
	"context"
	"fmt"
	"strings"
	"testing"

	midtranssdk "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/storefront-api/internal/domains/checkout/domain"
	"github.com/Apurer/storefront-api/internal/domains/checkout/ports"
	"github.com/Apurer/storefront-api/internal/shared/money"
)

const serverKey = "SB-Mid-server-test"

type fakeSnap struct {
	req  *snap.Request
	resp *snap.Response
	err  *midtranssdk.Error
}

func (f *fakeSnap) CreateTransaction(req *snap.Request) (*snap.Response, *midtranssdk.Error) {
	f.req = req
	return f.resp, f.err
}

func backpackSnapshot() domain.Snapshot {
	return domain.Snapshot{Lines: []domain.LineItem{
		{ProductID: "p-backpack", Title: "Backpack", UnitPrice: decimal.RequireFromString("79.99"), Quantity: 2},
	}}
}

func TestCreateSessionBuildsSnapRequest(t *testing.T) {
	fake := &fakeSnap{resp: &snap.Response{Token: "tok", RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/tok"}}
	gw := &Gateway{snap: fake, config: Config{FinishURL: "https://shop.test/orders"}}
	snapshot := backpackSnapshot()

	session, err := gw.CreateSession(context.Background(), ports.SessionRequest{
		UserID:      "user-1",
		Currency:    money.IDR,
		Snapshot:    snapshot,
		AmountMinor: snapshot.AmountMinor(money.IDR),
	})
	require.NoError(t, err)

	assert.Equal(t, "https://app.sandbox.midtrans.com/snap/v2/vtweb/tok", session.RedirectURL)
	assert.True(t, strings.HasPrefix(session.SessionID, "SF-"))
	require.NotNil(t, fake.req)
	assert.Equal(t, int64(2495688), fake.req.TransactionDetails.GrossAmt)
	require.NotNil(t, fake.req.Items)
	var sum int64
	for _, item := range *fake.req.Items {
		sum += item.Price * int64(item.Qty)
	}
	assert.Equal(t, fake.req.TransactionDetails.GrossAmt, sum)
	assert.Equal(t, "user-1", fake.req.CustomField1)
	assert.Equal(t, "IDR", fake.req.CustomField2)
	assert.NotEmpty(t, fake.req.CustomField3)
	require.NotNil(t, fake.req.Callbacks)
	assert.Equal(t, "https://shop.test/orders", fake.req.Callbacks.Finish)
}

func TestCreateSessionRejectsOtherCurrencies(t *testing.T) {
	gw := &Gateway{snap: &fakeSnap{}}
	_, err := gw.CreateSession(context.Background(), ports.SessionRequest{UserID: "user-1", Currency: money.USD})
	assert.ErrorIs(t, err, money.ErrUnsupportedCurrency)
}

func TestCreateSessionWrapsSnapErrors(t *testing.T) {
	gw := &Gateway{snap: &fakeSnap{err: &midtranssdk.Error{Message: "unauthorized", StatusCode: 401}}}
	_, err := gw.CreateSession(context.Background(), ports.SessionRequest{
		UserID: "user-1", Currency: money.IDR, Snapshot: backpackSnapshot(),
	})
	assert.ErrorIs(t, err, ports.ErrGateway)
}

func TestCreateSessionRejectsOversizedSnapshot(t *testing.T) {
	gw := &Gateway{snap: &fakeSnap{}}
	var lines []domain.LineItem
	for i := 0; i < 20; i++ {
		lines = append(lines, domain.LineItem{ProductID: fmt.Sprintf("product-%02d", i), UnitPrice: decimal.NewFromInt(1), Quantity: 1})
	}
	_, err := gw.CreateSession(context.Background(), ports.SessionRequest{
		UserID: "user-1", Currency: money.IDR, Snapshot: domain.Snapshot{Lines: lines},
	})
	assert.ErrorIs(t, err, domain.ErrSnapshotTooLarge)
}

func notificationPayload(status, fraud, signature string) []byte {
	return []byte(fmt.Sprintf(`{
  "transaction_id": "tx-1",
  "transaction_status": %q,
  "fraud_status": %q,
  "order_id": "SF-1",
  "status_code": "200",
  "gross_amount": "2495688.00",
  "currency": "IDR",
  "signature_key": %q,
  "custom_field1": "user-1",
  "custom_field2": "IDR",
  "custom_field3": "[{\"id\":\"p-backpack\",\"q\":2,\"p\":\"79.99\"}]"
}`, status, fraud, signature))
}

func TestParseWebhookSettlement(t *testing.T) {
	gw := &Gateway{config: Config{ServerKey: serverKey}}
	sig := Signature("SF-1", "200", "2495688.00", serverKey)

	event, err := gw.ParseWebhook(context.Background(), notificationPayload("settlement", "", sig), nil)
	require.NoError(t, err)

	assert.Equal(t, domain.EventPaymentCompleted, event.Kind)
	assert.Equal(t, "SF-1", event.SessionID)
	assert.Equal(t, "tx-1", event.PaymentIntentID)
	assert.Equal(t, "user-1", event.UserID)
	assert.Equal(t, "IDR", event.Currency)
	assert.Equal(t, int64(2495688), event.AmountMinor)
	require.Len(t, event.Items, 1)
	assert.Equal(t, 2, event.Items[0].Quantity)
}

func TestParseWebhookCaptureNeedsFraudAccept(t *testing.T) {
	gw := &Gateway{config: Config{ServerKey: serverKey}}
	sig := Signature("SF-1", "200", "2495688.00", serverKey)

	event, err := gw.ParseWebhook(context.Background(), notificationPayload("capture", "challenge", sig), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.EventIgnored, event.Kind)

	event, err = gw.ParseWebhook(context.Background(), notificationPayload("capture", "accept", sig), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.EventPaymentCompleted, event.Kind)

	event, err = gw.ParseWebhook(context.Background(), notificationPayload("pending", "", sig), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.EventIgnored, event.Kind)
}

func TestParseWebhookSignature(t *testing.T) {
	gw := &Gateway{config: Config{ServerKey: serverKey}}

	_, err := gw.ParseWebhook(context.Background(), notificationPayload("settlement", "", ""), nil)
	assert.ErrorIs(t, err, ports.ErrMissingSignature)

	bad := Signature("SF-1", "200", "1.00", serverKey)
	_, err = gw.ParseWebhook(context.Background(), notificationPayload("settlement", "", bad), nil)
	assert.ErrorIs(t, err, ports.ErrInvalidSignature)

	_, err = gw.ParseWebhook(context.Background(), []byte("not json"), nil)
	assert.ErrorIs(t, err, domain.ErrMalformedEvent)
}
