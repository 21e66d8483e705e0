package application

import (
	"context"
	"errors"

	"github.com/Apurer/storefront-api/internal/domains/checkout/domain"
	"github.com/Apurer/storefront-api/internal/domains/checkout/ports"
	ordersdomain "github.com/Apurer/storefront-api/internal/domains/orders/domain"
	"github.com/Apurer/storefront-api/internal/shared/money"
)

// Recorder materializes an order from a completed payment event.
// Orders are built from the event's snapshot, never from a live cart.
type Recorder struct {
	ledger ports.Ledger
}

func NewRecorder(ledger ports.Ledger) *Recorder {
	return &Recorder{ledger: ledger}
}

func (r *Recorder) Record(ctx context.Context, event domain.GatewayEvent) (*ports.MaterializeResult, error) {
	if event.Kind != domain.EventPaymentCompleted {
		return nil, mapError(errors.Join(domain.ErrMalformedEvent, errors.New("event does not complete a payment")))
	}
	if err := event.Validate(); err != nil {
		return nil, mapError(err)
	}
	lines := make([]ordersdomain.Item, 0, len(event.Items))
	for _, item := range event.Items {
		lines = append(lines, ordersdomain.Item{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.UnitPrice,
		})
	}
	order, err := ordersdomain.NewOrder(event.UserID, ordersdomain.StatusCompleted, lines)
	if err != nil {
		return nil, mapError(err)
	}
	order.AttachPayment(event.Provider, event.PaymentIntentID, event.SessionID, event.Shipping)
	if currency, err := money.Parse(event.Currency); err == nil && event.AmountMinor > 0 {
		order.Charged = &ordersdomain.Charge{
			Amount:   money.FromMinorUnits(event.AmountMinor, currency),
			Currency: string(currency),
		}
	}

	hash, err := FingerprintEvent(event)
	if err != nil {
		return nil, err
	}
	record := ports.ProcessedPayment{
		Key:         event.IdempotencyKey(),
		RequestHash: hash,
		OrderID:     order.ID,
	}
	stored, replayed, err := r.ledger.CommitPayment(ctx, record, order)
	if err != nil {
		return nil, err
	}
	return &ports.MaterializeResult{OrderID: stored.ID, Replayed: replayed}, nil
}

var _ ports.PaymentRecorder = (*Recorder)(nil)
