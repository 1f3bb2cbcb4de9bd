// Package scheduler runs background jobs next to the HTTP API.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PaymentRefresher is the checkout side the poller drives
type PaymentRefresher interface {
	// AwaitingPayment reports whether a payment outcome is still expected
	AwaitingPayment() bool
	RefreshPayment(ctx context.Context) error
}

// PaymentPollerConfig holds payment poller configuration
type PaymentPollerConfig struct {
	// Interval between status checks
	Interval time.Duration
	// Timeout bounds one status check
	Timeout time.Duration
}

// DefaultPaymentPollerConfig returns default payment poller configuration
func DefaultPaymentPollerConfig() PaymentPollerConfig {
	return PaymentPollerConfig{
		Interval: 5 * time.Second,
		Timeout:  10 * time.Second,
	}
}

// Validate checks the configuration
func (c PaymentPollerConfig) Validate() error {
	if c.Interval <= 0 || c.Timeout <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// PaymentPoller refreshes a pending payment's status on a fixed interval,
// so a payment settled on the provider page is noticed without a client poll.
type PaymentPoller struct {
	config    PaymentPollerConfig
	refresher PaymentRefresher
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	polls     int
}

// NewPaymentPoller creates a new payment poller
func NewPaymentPoller(config PaymentPollerConfig, refresher PaymentRefresher, logger *zap.Logger) (*PaymentPoller, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentPoller{
		config:    config,
		refresher: refresher,
		logger:    logger,
	}, nil
}

// Start starts the poll loop
func (p *PaymentPoller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.isRunning {
		p.mu.Unlock()
		return ErrAlreadyRunning
	}
	p.isRunning = true
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.runLoop(ctx)

	p.logger.Info("Payment poller started",
		zap.Duration("interval", p.config.Interval),
	)
	return nil
}

// Stop stops the poll loop and waits for an in-flight check
func (p *PaymentPoller) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return nil
	}
	p.isRunning = false
	p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("Payment poller stopped")
		return nil
	case <-ctx.Done():
		p.logger.Warn("Payment poller stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the poll loop is active
func (p *PaymentPoller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isRunning
}

// Polls returns how many status checks were issued
func (p *PaymentPoller) Polls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.polls
}

func (p *PaymentPoller) runLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.PollOnce(ctx)
		}
	}
}

// PollOnce refreshes the payment status when a payment is pending
func (p *PaymentPoller) PollOnce(ctx context.Context) {
	if !p.refresher.AwaitingPayment() {
		return
	}

	p.mu.Lock()
	p.polls++
	p.mu.Unlock()

	pollCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	if err := p.refresher.RefreshPayment(pollCtx); err != nil {
		p.logger.Warn("Payment status poll failed", zap.Error(err))
	}
}
