package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gastroshop/storefront/internal/domain/cart"
	domain "github.com/gastroshop/storefront/internal/domain/checkout"
	"github.com/gastroshop/storefront/internal/domain/order"
	"github.com/gastroshop/storefront/internal/domain/payment"
	"github.com/gastroshop/storefront/internal/domain/shared"
	"github.com/gastroshop/storefront/internal/infrastructure/logger"
	"github.com/gastroshop/storefront/internal/infrastructure/telemetry"
)

// Defaults applied by NewOrchestrator
const (
	DefaultConfirmationDelay = 2 * time.Second
	DefaultConfirmationPath  = "/checkout/success"
	DefaultLockTTL           = 30 * time.Second
	DefaultCompletionTimeout = time.Minute
	MockCheckoutPath         = "/mock-checkout/"
)

// ErrUnknownPayment is returned when a payment id does not belong to the current checkout
var ErrUnknownPayment = shared.NewDomainError(shared.ErrNotFound.Code, "Payment not found")

// Metrics receives checkout outcomes
type Metrics interface {
	RecordOrderCreated(ctx context.Context, amountCents int64)
	RecordReconciliationFailure(ctx context.Context, unresolved int)
	RecordOrderFailure(ctx context.Context)
	RecordSubmissionRejected(ctx context.Context)
	RecordDeferredPayment(ctx context.Context)
	RecordPaymentOutcome(ctx context.Context, status string)
}

// Config holds orchestrator settings
type Config struct {
	// ConfirmationDelay is how long a successful payment is shown before navigating away
	ConfirmationDelay  time.Duration
	ConfirmationPath   string
	MockGatewayEnabled bool
	LockTTL            time.Duration
	// CompletionTimeout bounds order creation and everything after it. That work no
	// longer follows the caller's context, so a shopper leaving cannot cut it short.
	CompletionTimeout time.Duration
}

type failure struct {
	code       string
	message    string
	unresolved []string
}

// Orchestrator runs one shopper's checkout: reconcile, submit the order, clear the cart
// and create the payment. It is safe for concurrent use. Transitions are serialized by
// mu; remote calls run outside it so concurrent callers observe in-flight states.
type Orchestrator struct {
	ledger      *cart.Ledger
	reconciler  *Reconciler
	orders      order.Service
	payments    payment.Gateway
	correlation domain.CorrelationStore
	lock        domain.SubmissionLock
	session     domain.SessionChecker
	metrics     Metrics
	cfg         Config
	logger      *zap.Logger

	mu            sync.Mutex
	state         domain.State
	orderID       int64
	amountCents   int64
	currency      string
	paymentID     string
	paymentStatus payment.Status
	redirectURL   string
	redirectAfter time.Duration
	notice        string
	lastErr       *failure
	settling      bool
}

// NewOrchestrator creates an idle orchestrator
func NewOrchestrator(
	ledger *cart.Ledger,
	reconciler *Reconciler,
	orders order.Service,
	payments payment.Gateway,
	correlation domain.CorrelationStore,
	cfg Config,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ConfirmationDelay <= 0 {
		cfg.ConfirmationDelay = DefaultConfirmationDelay
	}
	if cfg.ConfirmationPath == "" {
		cfg.ConfirmationPath = DefaultConfirmationPath
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultLockTTL
	}
	if cfg.CompletionTimeout <= 0 {
		cfg.CompletionTimeout = DefaultCompletionTimeout
	}
	return &Orchestrator{
		ledger:      ledger,
		reconciler:  reconciler,
		orders:      orders,
		payments:    payments,
		correlation: correlation,
		cfg:         cfg,
		logger:      logger,
		state:       domain.StateIdle,
	}
}

// SetSubmissionLock enables the cross-tab single-writer lock
func (o *Orchestrator) SetSubmissionLock(lock domain.SubmissionLock) {
	o.lock = lock
}

// SetSessionChecker requires a signed-in shopper before submission
func (o *Orchestrator) SetSessionChecker(checker domain.SessionChecker) {
	o.session = checker
}

// SetMetrics sets the optional metrics sink
func (o *Orchestrator) SetMetrics(m Metrics) {
	o.metrics = m
}

// State returns the current state
func (o *Orchestrator) State() domain.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Snapshot returns the display view of the checkout
func (o *Orchestrator) Snapshot() *CheckoutStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// Submit validates the shipping form and places an order for the current cart.
// Failures before the order exists leave the cart untouched. A failed payment creation
// is not an error: the checkout ends in DeferredPayment.
func (o *Orchestrator) Submit(ctx context.Context, shipping order.ShippingAddress) (*CheckoutStatus, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "submit")
	defer span.End()

	if o.busy() {
		o.rejectSubmission(ctx)
		return nil, domain.ErrCheckoutInProgress
	}
	if err := domain.ValidateShipping(shipping); err != nil {
		return nil, err
	}
	shipping = domain.NormalizeShipping(shipping)
	if o.ledger.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}
	if err := o.requireSession(ctx); err != nil {
		return nil, err
	}

	release, err := o.acquireSubmission(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrCheckoutInProgress) {
			o.rejectSubmission(ctx)
		}
		return nil, err
	}
	defer release()

	o.mu.Lock()
	if o.busyLocked() {
		o.mu.Unlock()
		o.rejectSubmission(ctx)
		return nil, domain.ErrCheckoutInProgress
	}
	items := o.ledger.Items()
	if len(items) == 0 {
		o.mu.Unlock()
		return nil, domain.ErrEmptyCart
	}
	if o.state != domain.StateIdle {
		if err := o.resetLocked(); err != nil {
			o.mu.Unlock()
			return nil, err
		}
	}
	if err := o.transitionLocked(domain.StateReconciling); err != nil {
		o.mu.Unlock()
		return nil, err
	}
	o.mu.Unlock()
	telemetry.SetAttributes(span, telemetry.SpanAttrLineCount, len(items))

	resolved, err := o.reconciler.Reconcile(ctx, items)
	if err != nil {
		unresolved := []string(nil)
		var recErr *domain.ReconciliationError
		if errors.As(err, &recErr) {
			unresolved = recErr.Unresolved
		}
		o.mu.Lock()
		o.failLocked(domain.CodeReconciliationFailed, domain.MsgReconciliationFailed, unresolved)
		o.mu.Unlock()

		logger.WithLogger(ctx, o.logger).Error("Cart reconciliation failed",
			zap.Strings("unresolved", unresolved),
			zap.Error(err))
		telemetry.RecordError(span, err)
		if o.metrics != nil {
			o.metrics.RecordReconciliationFailure(ctx, len(unresolved))
		}
		return nil, err
	}

	req := order.CreateRequest{
		Items:           make([]order.Item, 0, len(resolved)),
		ShippingAddress: shipping,
	}
	for _, line := range resolved {
		req.Items = append(req.Items, order.Item{
			ProductID:  line.ProductID,
			Quantity:   line.Item.Quantity,
			PriceCents: line.Item.UnitPriceCents,
		})
	}

	o.mu.Lock()
	err = o.transitionLocked(domain.StateSubmitting)
	o.mu.Unlock()
	if err != nil {
		return nil, err
	}

	// from the order request on, work runs to completion even if the caller goes away
	ctx, cancel := o.detach(ctx)
	defer cancel()

	created, err := o.orders.Create(ctx, req, uuid.NewString())
	if err != nil {
		orderErr := domain.NewOrderCreationError(err)
		o.mu.Lock()
		o.failLocked(orderErr.Code, orderErr.Message, nil)
		o.mu.Unlock()

		logger.WithLogger(ctx, o.logger).Error("Order creation failed", zap.Error(err))
		telemetry.RecordError(span, err)
		if o.metrics != nil {
			o.metrics.RecordOrderFailure(ctx)
		}
		return nil, orderErr
	}

	amount := created.AmountCents
	if amount == 0 {
		amount = req.AmountCents()
	}
	o.mu.Lock()
	o.orderID = created.ID
	o.amountCents = amount
	o.currency = created.Currency
	err = o.transitionLocked(domain.StateOrderCreated)
	o.mu.Unlock()
	if err != nil {
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, created.ID,
		telemetry.SpanAttrAmount, amount)

	// the order exists from here on; storage failures are logged, never rolled back
	if err := o.ledger.Clear(ctx); err != nil {
		o.logger.Error("Failed to clear cart after order creation",
			zap.Int64("order_id", created.ID),
			zap.Error(err))
	}
	if err := o.correlation.SaveOrderID(ctx, created.ID); err != nil {
		o.logger.Error("Failed to persist order id",
			zap.Int64("order_id", created.ID),
			zap.Error(err))
	}
	release()
	if o.metrics != nil {
		o.metrics.RecordOrderCreated(ctx, amount)
	}

	o.mu.Lock()
	err = o.transitionLocked(domain.StateCreatingPayment)
	o.mu.Unlock()
	if err != nil {
		return nil, err
	}
	o.createPayment(ctx, created.ID)

	return o.Snapshot(), nil
}

// RetryPayment creates a new payment for the current order. The order is never resubmitted.
func (o *Orchestrator) RetryPayment(ctx context.Context) (*CheckoutStatus, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "retry_payment")
	defer span.End()

	o.mu.Lock()
	if !o.state.CanRetryPayment() {
		err := domain.NewInvalidTransitionError(o.state, domain.StateCreatingPayment)
		o.mu.Unlock()
		return nil, err
	}
	if err := o.transitionLocked(domain.StateCreatingPayment); err != nil {
		o.mu.Unlock()
		return nil, err
	}
	orderID := o.orderID
	o.notice = ""
	o.lastErr = nil
	o.mu.Unlock()

	telemetry.SetAttributes(span, telemetry.SpanAttrOrderID, orderID)
	ctx, cancel := o.detach(ctx)
	defer cancel()
	o.createPayment(ctx, orderID)
	return o.Snapshot(), nil
}

// createPayment runs in CreatingPayment and ends in PaymentPending or DeferredPayment
func (o *Orchestrator) createPayment(ctx context.Context, orderID int64) {
	session, err := o.payments.Create(ctx, orderID)
	if err != nil {
		o.mu.Lock()
		o.paymentID = ""
		o.paymentStatus = ""
		o.notice = domain.MsgDeferredPayment
		o.redirectURL = o.confirmationURL(orderID)
		o.redirectAfter = 0
		_ = o.transitionLocked(domain.StateDeferredPayment)
		o.mu.Unlock()

		logger.WithLogger(ctx, o.logger).Warn("Payment creation failed, payment deferred",
			zap.Int64("order_id", orderID),
			zap.Error(err))
		if o.metrics != nil {
			o.metrics.RecordDeferredPayment(ctx)
		}
		return
	}

	o.mu.Lock()
	o.paymentID = session.PaymentID
	o.paymentStatus = payment.StatusPending
	o.notice = ""
	o.redirectURL = o.paymentRedirect(*session, orderID)
	o.redirectAfter = 0
	_ = o.transitionLocked(domain.StatePaymentPending)
	o.mu.Unlock()

	if err := o.correlation.SavePaymentID(ctx, session.PaymentID); err != nil {
		o.logger.Error("Failed to persist payment id",
			zap.Int64("order_id", orderID),
			zap.String("payment_id", session.PaymentID),
			zap.Error(err))
	}
}

// CompletePayment settles the pending payment through the simulated gateway
func (o *Orchestrator) CompletePayment(ctx context.Context, paymentID string) (*CheckoutStatus, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "complete_payment",
		telemetry.SpanAttrPaymentID, paymentID)
	defer span.End()

	o.mu.Lock()
	if err := o.checkPendingLocked(paymentID, domain.StatePaymentSucceeded); err != nil {
		o.mu.Unlock()
		return nil, err
	}
	o.settling = true
	o.mu.Unlock()

	completion, err := o.payments.MockComplete(ctx, paymentID)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.settling = false
	if o.state != domain.StatePaymentPending || o.paymentID != paymentID {
		return o.snapshotLocked(), nil
	}
	if err != nil {
		logger.WithLogger(ctx, o.logger).Error("Payment completion failed",
			zap.String("payment_id", paymentID),
			zap.Error(err))
		telemetry.RecordError(span, err)
		o.applyStatusLocked(ctx, payment.StatusFailed)
		return o.snapshotLocked(), nil
	}
	if completion != nil && completion.OrderID > 0 && completion.OrderID != o.orderID {
		o.logger.Warn("Gateway reported a different order for the payment",
			zap.String("payment_id", paymentID),
			zap.Int64("order_id", o.orderID),
			zap.Int64("gateway_order_id", completion.OrderID))
	}
	o.applyStatusLocked(ctx, payment.StatusSucceeded)
	return o.snapshotLocked(), nil
}

// CancelPayment abandons the pending payment on the simulated gateway page
func (o *Orchestrator) CancelPayment(ctx context.Context, paymentID string) (*CheckoutStatus, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "cancel_payment",
		telemetry.SpanAttrPaymentID, paymentID)
	defer span.End()

	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.checkPendingLocked(paymentID, domain.StatePaymentCanceled); err != nil {
		return nil, err
	}
	o.applyStatusLocked(ctx, payment.StatusCanceled)
	return o.snapshotLocked(), nil
}

// RefreshPaymentStatus polls the payment service while a payment is pending. A poll
// error keeps the payment pending with an unknown status.
func (o *Orchestrator) RefreshPaymentStatus(ctx context.Context) (*CheckoutStatus, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "refresh_payment")
	defer span.End()

	o.mu.Lock()
	if o.state != domain.StatePaymentPending || o.settling {
		defer o.mu.Unlock()
		return o.snapshotLocked(), nil
	}
	paymentID := o.paymentID
	o.mu.Unlock()

	p, err := o.payments.Status(ctx, paymentID)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != domain.StatePaymentPending || o.paymentID != paymentID {
		return o.snapshotLocked(), nil
	}
	if err != nil {
		o.logger.Warn("Payment status unavailable",
			zap.String("payment_id", paymentID),
			zap.Error(err))
		o.applyStatusLocked(ctx, payment.StatusUnknown)
		return o.snapshotLocked(), nil
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrPaymentStatus, p.Status.String())
	o.applyStatusLocked(ctx, p.Status)
	return o.snapshotLocked(), nil
}

// AwaitingPayment reports whether a payment is pending and not being settled
func (o *Orchestrator) AwaitingPayment() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state == domain.StatePaymentPending && !o.settling
}

// RefreshPayment is RefreshPaymentStatus for background pollers
func (o *Orchestrator) RefreshPayment(ctx context.Context) error {
	_, err := o.RefreshPaymentStatus(ctx)
	return err
}

// Resume restores the checkout of the last created order from the correlation record.
// Without a record the checkout stays as it is.
func (o *Orchestrator) Resume(ctx context.Context) (*CheckoutStatus, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "resume")
	defer span.End()

	if o.State().IsInFlight() {
		return nil, domain.ErrCheckoutInProgress
	}

	corr, found, err := o.correlation.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load checkout correlation: %w", err)
	}
	if !found {
		return o.Snapshot(), nil
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrOrderID, corr.OrderID)

	ord, err := o.orders.Get(ctx, corr.OrderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	paymentID := corr.PaymentID
	if paymentID == "" {
		paymentID = ord.PaymentID
	}
	status := payment.Status("")
	if paymentID != "" {
		p, err := o.payments.Status(ctx, paymentID)
		if err != nil {
			o.logger.Warn("Payment status unavailable on resume",
				zap.String("payment_id", paymentID),
				zap.Error(err))
			status = payment.StatusUnknown
		} else {
			status = p.Status
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.IsInFlight() {
		return nil, domain.ErrCheckoutInProgress
	}
	if o.state != domain.StateIdle {
		if err := o.resetLocked(); err != nil {
			return nil, err
		}
	}

	o.orderID = ord.ID
	o.amountCents = ord.AmountCents
	o.currency = ord.Currency
	o.paymentID = paymentID

	if paymentID == "" {
		o.notice = domain.MsgDeferredPayment
		if err := o.transitionLocked(domain.StateDeferredPayment); err != nil {
			return nil, err
		}
		return o.snapshotLocked(), nil
	}

	if err := o.transitionLocked(domain.StatePaymentPending); err != nil {
		return nil, err
	}
	o.paymentStatus = payment.StatusPending
	o.applyStatusLocked(ctx, status)
	// resumed on the confirmation view; nothing to navigate to
	o.redirectURL = ""
	o.redirectAfter = 0
	return o.snapshotLocked(), nil
}

// DescribePayment returns the amount and order of a payment for the simulated gateway page.
// The amount falls back to the order total when the status endpoint is unavailable.
func (o *Orchestrator) DescribePayment(ctx context.Context, paymentID string) (*PaymentView, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "describe_payment",
		telemetry.SpanAttrPaymentID, paymentID)
	defer span.End()

	o.mu.Lock()
	if paymentID == "" || paymentID != o.paymentID {
		o.mu.Unlock()
		return nil, ErrUnknownPayment
	}
	view := &PaymentView{
		PaymentID: paymentID,
		OrderID:   o.orderID,
		Amount:    decimal.New(o.amountCents, -2).StringFixed(2),
		Currency:  o.currency,
		Status:    o.paymentStatus.String(),
	}
	o.mu.Unlock()

	p, err := o.payments.Status(ctx, paymentID)
	if err != nil {
		o.logger.Warn("Payment status unavailable for gateway page",
			zap.String("payment_id", paymentID),
			zap.Error(err))
		return view, nil
	}
	if !p.Amount.Value.IsZero() {
		view.Amount = p.Amount.Value.StringFixed(2)
		if p.Amount.Currency != "" {
			view.Currency = p.Amount.Currency
		}
	}
	if p.Status != "" {
		view.Status = p.Status.String()
	}
	return view, nil
}

// applyStatusLocked moves a pending payment to the state matching status
func (o *Orchestrator) applyStatusLocked(ctx context.Context, status payment.Status) {
	var target domain.State
	switch status {
	case payment.StatusSucceeded:
		target = domain.StatePaymentSucceeded
		o.notice = ""
		o.lastErr = nil
		o.redirectURL = o.confirmationURL(o.orderID)
		o.redirectAfter = o.cfg.ConfirmationDelay
	case payment.StatusFailed:
		target = domain.StatePaymentFailed
		o.notice = ""
		o.lastErr = &failure{code: domain.CodePaymentFailed, message: domain.MsgPaymentFailed}
		o.redirectURL = ""
		o.redirectAfter = 0
	case payment.StatusCanceled:
		target = domain.StatePaymentCanceled
		o.notice = domain.MsgPaymentCanceled
		o.redirectURL = ""
		o.redirectAfter = 0
	case payment.StatusPending:
		o.paymentStatus = status
		o.notice = ""
		return
	default:
		o.paymentStatus = payment.StatusUnknown
		o.notice = domain.MsgStatusUnknown
		return
	}

	if err := o.transitionLocked(target); err != nil {
		o.logger.Error("Unexpected payment transition", zap.Error(err))
		return
	}
	o.paymentStatus = status
	if o.metrics != nil {
		o.metrics.RecordPaymentOutcome(ctx, status.String())
	}
}

func (o *Orchestrator) checkPendingLocked(paymentID string, target domain.State) error {
	if paymentID == "" || paymentID != o.paymentID {
		return ErrUnknownPayment
	}
	if o.state != domain.StatePaymentPending || o.settling {
		return domain.NewInvalidTransitionError(o.state, target)
	}
	return nil
}

func (o *Orchestrator) transitionLocked(to domain.State) error {
	from := o.state
	if !from.CanTransitionTo(to) {
		return domain.NewInvalidTransitionError(from, to)
	}
	o.state = to
	o.logger.Info("Checkout state changed",
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.Int64("order_id", o.orderID))
	return nil
}

func (o *Orchestrator) failLocked(code, message string, unresolved []string) {
	o.lastErr = &failure{code: code, message: message, unresolved: unresolved}
	if err := o.transitionLocked(domain.StateError); err != nil {
		o.logger.Error("Unexpected checkout transition", zap.Error(err))
	}
}

// resetLocked returns a settled checkout to Idle and forgets the previous order
func (o *Orchestrator) resetLocked() error {
	if err := o.transitionLocked(domain.StateIdle); err != nil {
		return err
	}
	o.orderID = 0
	o.amountCents = 0
	o.currency = ""
	o.paymentID = ""
	o.paymentStatus = ""
	o.redirectURL = ""
	o.redirectAfter = 0
	o.notice = ""
	o.lastErr = nil
	return nil
}

func (o *Orchestrator) snapshotLocked() *CheckoutStatus {
	status := &CheckoutStatus{
		State:           o.state,
		OrderID:         o.orderID,
		AmountCents:     o.amountCents,
		Currency:        o.currency,
		PaymentID:       o.paymentID,
		PaymentStatus:   o.paymentStatus.String(),
		RedirectURL:     o.redirectURL,
		RedirectAfterMs: o.redirectAfter.Milliseconds(),
		Notice:          o.notice,
	}
	if o.lastErr != nil {
		status.Error = &ErrorView{
			Code:       o.lastErr.code,
			Message:    o.lastErr.message,
			Unresolved: append([]string(nil), o.lastErr.unresolved...),
		}
	}
	return status
}

func (o *Orchestrator) paymentRedirect(session payment.Session, orderID int64) string {
	if target := session.RedirectURL(); target != "" {
		return target
	}
	if o.cfg.MockGatewayEnabled {
		return MockCheckoutPath + url.PathEscape(session.PaymentID)
	}
	return o.confirmationURL(orderID)
}

func (o *Orchestrator) confirmationURL(orderID int64) string {
	return o.cfg.ConfirmationPath + "?order_id=" + strconv.FormatInt(orderID, 10)
}

func (o *Orchestrator) requireSession(ctx context.Context) error {
	if o.session == nil {
		return nil
	}
	ok, err := o.session.IsAuthenticated(ctx)
	if err != nil {
		o.logger.Warn("Session check failed", zap.Error(err))
		return domain.ErrAuthenticationRequired
	}
	if !ok {
		return domain.ErrAuthenticationRequired
	}
	return nil
}

// detach returns a context that keeps ctx's values but not its cancellation,
// bounded by CompletionTimeout
func (o *Orchestrator) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), o.cfg.CompletionTimeout)
}

// busy reports whether a checkout is in flight or a payment is being settled
func (o *Orchestrator) busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busyLocked()
}

func (o *Orchestrator) busyLocked() bool {
	return o.state.IsInFlight() || o.settling
}

// acquireSubmission takes the cross-tab lock when configured. The returned release
// func is safe to call more than once.
func (o *Orchestrator) acquireSubmission(ctx context.Context) (func(), error) {
	if o.lock == nil {
		return func() {}, nil
	}
	ok, err := o.lock.TryAcquire(ctx, cart.StorageKey, o.cfg.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire checkout lock: %w", err)
	}
	if !ok {
		return nil, domain.ErrCheckoutInProgress
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := o.lock.Release(context.WithoutCancel(ctx), cart.StorageKey); err != nil {
				o.logger.Warn("Failed to release checkout lock", zap.Error(err))
			}
		})
	}, nil
}

func (o *Orchestrator) rejectSubmission(ctx context.Context) {
	o.logger.Info("Ignoring submission while checkout is in progress")
	if o.metrics != nil {
		o.metrics.RecordSubmissionRejected(ctx)
	}
}
