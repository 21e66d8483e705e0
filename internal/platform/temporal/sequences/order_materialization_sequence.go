package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/storefront-api/internal/domains/checkout/domain"
	"github.com/Apurer/storefront-api/internal/domains/checkout/ports"
	checkoutactivities "github.com/Apurer/storefront-api/internal/platform/temporal/activities/checkout"
)

// RunOrderMaterializationSequence records a completed payment as an order, retrying
// transient storage failures.
func RunOrderMaterializationSequence(ctx workflow.Context, event domain.GatewayEvent) (*ports.MaterializeResult, error) {
	logger := workflow.GetLogger(ctx)
	key := event.IdempotencyKey()
	logger.Info("order materialization sequence started", "paymentKey", key)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    10,
			NonRetryableErrorTypes: []string{
				checkoutactivities.ErrTypeInvalidEvent,
				checkoutactivities.ErrTypeIdempotencyConflict,
			},
		},
	}

	var result ports.MaterializeResult
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, options), checkoutactivities.MaterializeOrderActivityName, event).Get(ctx, &result)
	if err != nil {
		logger.Error("order materialization sequence failed", "paymentKey", key, "error", err)
		return nil, err
	}
	logger.Info("order materialization sequence completed", "paymentKey", key, "orderId", result.OrderID)
	return &result, nil
}
