package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/storefront-api/internal/domains/checkout/domain"
	"github.com/Apurer/storefront-api/internal/domains/checkout/ports"
	checkoutactivities "github.com/Apurer/storefront-api/internal/platform/temporal/activities/checkout"
	checkoutworkflows "github.com/Apurer/storefront-api/internal/platform/temporal/workflows/checkout"
)

var (
	_ ports.OrderMaterializer = (*TemporalOrderMaterializer)(nil)
	_ ports.OrderMaterializer = (*InlineOrderMaterializer)(nil)
)

// ErrMaterializationTimeout means the workflow did not report an order in time. The
// webhook answers 500 so the gateway redelivers; the workflow id makes the retry join it.
var ErrMaterializationTimeout = errors.New("order materialization did not finish in time")

// DefaultWaitTimeout bounds a webhook's wait when no option overrides it.
const DefaultWaitTimeout = 30 * time.Second

// TemporalOrderMaterializer runs order materialization as a Temporal workflow keyed on the payment.
type TemporalOrderMaterializer struct {
	client    client.Client
	taskQueue string
	wait      time.Duration
}

type Option func(*TemporalOrderMaterializer)

// WithWaitTimeout caps how long Materialize waits for the workflow result.
func WithWaitTimeout(d time.Duration) Option {
	return func(m *TemporalOrderMaterializer) {
		if d > 0 {
			m.wait = d
		}
	}
}

func NewTemporalOrderMaterializer(c client.Client, opts ...Option) *TemporalOrderMaterializer {
	m := &TemporalOrderMaterializer{
		client:    c,
		taskQueue: checkoutworkflows.OrderMaterializationTaskQueue,
		wait:      DefaultWaitTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Materialize starts (or joins) the workflow for this payment and waits for its order.
func (m *TemporalOrderMaterializer) Materialize(ctx context.Context, event domain.GatewayEvent) (*ports.MaterializeResult, error) {
	if m == nil || m.client == nil {
		return nil, errors.New("temporal order materializer not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, m.wait)
	defer cancel()
	workflowID := buildWorkflowID(event.IdempotencyKey())
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: m.taskQueue,
	}
	input := checkoutworkflows.OrderMaterializationWorkflowInput{Event: event, TraceID: workflowTraceID(ctx)}
	run, err := m.client.ExecuteWorkflow(ctx, options, checkoutworkflows.OrderMaterializationWorkflowName, input)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) {
			return nil, err
		}
		run = m.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var result ports.MaterializeResult
	if err := run.Get(ctx, &result); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrMaterializationTimeout, workflowID)
		}
		return nil, translateWorkflowError(err)
	}
	return &result, nil
}

// InlineOrderMaterializer records the payment synchronously, for development and tests.
type InlineOrderMaterializer struct {
	recorder ports.PaymentRecorder
}

func NewInlineOrderMaterializer(recorder ports.PaymentRecorder) *InlineOrderMaterializer {
	return &InlineOrderMaterializer{recorder: recorder}
}

func (m *InlineOrderMaterializer) Materialize(ctx context.Context, event domain.GatewayEvent) (*ports.MaterializeResult, error) {
	if m == nil || m.recorder == nil {
		return nil, errors.New("inline order materializer not configured")
	}
	return m.recorder.Record(ctx, event)
}

// translateWorkflowError restores the sentinel errors lost when an activity error crosses Temporal.
func translateWorkflowError(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	switch appErr.Type() {
	case checkoutactivities.ErrTypeInvalidEvent:
		return errors.Join(domain.ErrMalformedEvent, err)
	case checkoutactivities.ErrTypeIdempotencyConflict:
		return fmt.Errorf("%w: %w", ports.ErrIdempotencyConflict, err)
	}
	return err
}

func buildWorkflowID(key string) string {
	sum := sha256.Sum256([]byte(key))
	return fmt.Sprintf("order-materialization-%s", hex.EncodeToString(sum[:8]))
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
