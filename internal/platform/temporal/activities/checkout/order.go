package checkout

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	checkoutapp "github.com/Apurer/storefront-api/internal/domains/checkout/application"
	"github.com/Apurer/storefront-api/internal/domains/checkout/domain"
	"github.com/Apurer/storefront-api/internal/domains/checkout/ports"
)

const (
	// MaterializeOrderActivityName records a completed payment as an order.
	MaterializeOrderActivityName = "checkout.activities.MaterializeOrder"

	// ErrTypeInvalidEvent marks events that will never produce an order.
	ErrTypeInvalidEvent = "InvalidPaymentEvent"
	// ErrTypeIdempotencyConflict marks a payment key already bound to a different snapshot.
	ErrTypeIdempotencyConflict = "IdempotencyConflict"
)

// Activities groups activities that operate on the checkout bounded context.
type Activities struct {
	recorder ports.PaymentRecorder
}

func NewActivities(recorder ports.PaymentRecorder) *Activities {
	return &Activities{recorder: recorder}
}

// MaterializeOrder runs the payment recorder. Retries are safe because the recorder is
// keyed on the payment; input errors are returned as non-retryable.
func (a *Activities) MaterializeOrder(ctx context.Context, event domain.GatewayEvent) (*ports.MaterializeResult, error) {
	logger := activity.GetLogger(ctx)
	key := event.IdempotencyKey()
	if a == nil || a.recorder == nil {
		logger.Error("materialize order activity not initialized", "paymentKey", key)
		return nil, errors.New("materialize order activity not initialized")
	}
	logger.Info("MaterializeOrder activity started", "paymentKey", key, "userId", event.UserID)
	result, err := a.recorder.Record(ctx, event)
	if err != nil {
		logger.Error("MaterializeOrder activity failed", "paymentKey", key, "error", err)
		switch {
		case errors.Is(err, checkoutapp.ErrInvalidInput):
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidEvent, err)
		case errors.Is(err, ports.ErrIdempotencyConflict):
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeIdempotencyConflict, err)
		}
		return nil, err
	}
	logger.Info("MaterializeOrder activity completed", "paymentKey", key, "orderId", result.OrderID, "replayed", result.Replayed)
	return result, nil
}
