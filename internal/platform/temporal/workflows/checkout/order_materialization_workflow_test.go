package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	checkoutapp "github.com/Apurer/storefront-api/internal/domains/checkout/application"
	"github.com/Apurer/storefront-api/internal/domains/checkout/domain"
	"github.com/Apurer/storefront-api/internal/domains/checkout/ports"
	checkoutactivities "github.com/Apurer/storefront-api/internal/platform/temporal/activities/checkout"
)

type stubRecorder struct {
	calls  atomic.Int32
	result *ports.MaterializeResult
	errs   []error
}

func (s *stubRecorder) Record(_ context.Context, _ domain.GatewayEvent) (*ports.MaterializeResult, error) {
	n := int(s.calls.Add(1))
	if n <= len(s.errs) && s.errs[n-1] != nil {
		return nil, s.errs[n-1]
	}
	return s.result, nil
}

func completedEvent() domain.GatewayEvent {
	return domain.GatewayEvent{
		Provider:  "stripe",
		Kind:      domain.EventPaymentCompleted,
		SessionID: "cs_1",
		UserID:    "user-1",
		Currency:  "USD",
		Items:     []domain.EventItem{{ProductID: "p-backpack", Quantity: 1, UnitPrice: decimal.RequireFromString("79.99")}},
	}
}

func newEnv(t *testing.T, recorder ports.PaymentRecorder) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	acts := checkoutactivities.NewActivities(recorder)
	env.RegisterActivityWithOptions(acts.MaterializeOrder, activity.RegisterOptions{Name: checkoutactivities.MaterializeOrderActivityName})
	return env
}

func TestOrderMaterializationWorkflowRecordsPayment(t *testing.T) {
	recorder := &stubRecorder{result: &ports.MaterializeResult{OrderID: "order-1"}}
	env := newEnv(t, recorder)

	env.ExecuteWorkflow(OrderMaterializationWorkflow, OrderMaterializationWorkflowInput{Event: completedEvent(), TraceID: "trace"})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var result ports.MaterializeResult
	require.NoError(t, env.GetWorkflowResult(&result))
	assert.Equal(t, "order-1", result.OrderID)
	assert.Equal(t, int32(1), recorder.calls.Load())
}

func TestOrderMaterializationWorkflowRetriesTransientFailures(t *testing.T) {
	recorder := &stubRecorder{
		result: &ports.MaterializeResult{OrderID: "order-1"},
		errs:   []error{errors.New("connection reset")},
	}
	env := newEnv(t, recorder)

	env.ExecuteWorkflow(OrderMaterializationWorkflow, OrderMaterializationWorkflowInput{Event: completedEvent()})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	assert.Equal(t, int32(2), recorder.calls.Load())
}

func TestOrderMaterializationWorkflowStopsOnInvalidEvent(t *testing.T) {
	recorder := &stubRecorder{errs: []error{fmt.Errorf("%w: %w", checkoutapp.ErrInvalidInput, domain.ErrMalformedEvent)}}
	env := newEnv(t, recorder)

	env.ExecuteWorkflow(OrderMaterializationWorkflow, OrderMaterializationWorkflowInput{Event: completedEvent()})

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	assert.Equal(t, int32(1), recorder.calls.Load())
}
