package checkout

import (
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/storefront-api/internal/domains/checkout/domain"
	"github.com/Apurer/storefront-api/internal/domains/checkout/ports"
	"github.com/Apurer/storefront-api/internal/platform/temporal/sequences"
)

const (
	// OrderMaterializationWorkflowName is the public identifier for registering the workflow.
	OrderMaterializationWorkflowName = "checkout.workflows.OrderMaterialization"
	// OrderMaterializationTaskQueue is the queue consumed by the checkout worker.
	OrderMaterializationTaskQueue = "ORDER_MATERIALIZATION"
)

// OrderMaterializationWorkflowInput carries the verified payment event.
type OrderMaterializationWorkflowInput struct {
	Event   domain.GatewayEvent
	TraceID string
}

// OrderMaterializationWorkflow turns one completed payment into one order.
func OrderMaterializationWorkflow(ctx workflow.Context, input OrderMaterializationWorkflowInput) (*ports.MaterializeResult, error) {
	logger := workflow.GetLogger(ctx)
	key := input.Event.IdempotencyKey()
	logger.Info("OrderMaterializationWorkflow started", withTraceID(input.TraceID, "paymentKey", key)...)
	result, err := sequences.RunOrderMaterializationSequence(ctx, input.Event)
	if err != nil {
		logger.Error("OrderMaterializationWorkflow failed", withTraceID(input.TraceID, "paymentKey", key, "error", err)...)
		return nil, err
	}
	logger.Info("OrderMaterializationWorkflow completed", withTraceID(input.TraceID, "orderId", result.OrderID)...)
	return result, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
