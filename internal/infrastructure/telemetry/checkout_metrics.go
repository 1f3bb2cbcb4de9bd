package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// AttrPaymentStatus labels payment outcomes
const AttrPaymentStatus = attribute.Key("payment_status")

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// CheckoutMetrics counts checkout outcomes.
type CheckoutMetrics struct {
	logger *zap.Logger

	ordersCreated          metric.Int64Counter
	orderAmount            metric.Int64Counter
	reconciliationFailures metric.Int64Counter
	orderFailures          metric.Int64Counter
	submissionsRejected    metric.Int64Counter
	deferredPayments       metric.Int64Counter
	paymentOutcomes        metric.Int64Counter
	cartItems              metric.Int64Gauge
}

// NewCheckoutMetrics registers the checkout instruments on meter.
func NewCheckoutMetrics(meter metric.Meter, logger *zap.Logger) (*CheckoutMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cm := &CheckoutMetrics{logger: logger}
	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
		unit        string
	}{
		{&cm.ordersCreated, "storefront_orders_created_total", "Orders created by checkout", "{orders}"},
		{&cm.orderAmount, "storefront_order_amount_total", "Order amount in cents", "{cents}"},
		{&cm.reconciliationFailures, "storefront_reconciliation_failures_total", "Checkouts blocked by unresolved cart lines", "{checkouts}"},
		{&cm.orderFailures, "storefront_order_failures_total", "Order submissions rejected by the order service", "{checkouts}"},
		{&cm.submissionsRejected, "storefront_submissions_rejected_total", "Submissions ignored while a checkout was in flight", "{submissions}"},
		{&cm.deferredPayments, "storefront_deferred_payments_total", "Orders whose payment could not be created", "{orders}"},
		{&cm.paymentOutcomes, "storefront_payment_outcomes_total", "Observed payment outcomes", "{payments}"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name,
			metric.WithDescription(c.description),
			metric.WithUnit(c.unit))
		if err != nil {
			return nil, fmt.Errorf("failed to create counter %s: %w", c.name, err)
		}
		*c.target = counter
	}

	gauge, err := meter.Int64Gauge("storefront_cart_items",
		metric.WithDescription("Items currently in the cart"),
		metric.WithUnit("{items}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create gauge storefront_cart_items: %w", err)
	}
	cm.cartItems = gauge

	return cm, nil
}

// RecordOrderCreated records a created order and its amount
func (cm *CheckoutMetrics) RecordOrderCreated(ctx context.Context, amountCents int64) {
	cm.ordersCreated.Add(ctx, 1)
	cm.orderAmount.Add(ctx, amountCents)
}

// RecordReconciliationFailure records a checkout blocked by unresolved lines
func (cm *CheckoutMetrics) RecordReconciliationFailure(ctx context.Context, unresolved int) {
	cm.reconciliationFailures.Add(ctx, 1)
	cm.logger.Debug("reconciliation failure recorded", zap.Int("unresolved", unresolved))
}

// RecordOrderFailure records a failed order submission
func (cm *CheckoutMetrics) RecordOrderFailure(ctx context.Context) {
	cm.orderFailures.Add(ctx, 1)
}

// RecordSubmissionRejected records a submission refused by the single-flight guard
func (cm *CheckoutMetrics) RecordSubmissionRejected(ctx context.Context) {
	cm.submissionsRejected.Add(ctx, 1)
}

// RecordDeferredPayment records an order left without a payment
func (cm *CheckoutMetrics) RecordDeferredPayment(ctx context.Context) {
	cm.deferredPayments.Add(ctx, 1)
}

// RecordPaymentOutcome records an observed payment status
func (cm *CheckoutMetrics) RecordPaymentOutcome(ctx context.Context, status string) {
	cm.paymentOutcomes.Add(ctx, 1, metric.WithAttributes(AttrPaymentStatus.String(status)))
}

// RecordCartItems records the current cart item count
func (cm *CheckoutMetrics) RecordCartItems(ctx context.Context, count int) {
	cm.cartItems.Record(ctx, int64(count))
}
