package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/gastroshop/storefront/internal/domain/cart"
	"github.com/gastroshop/storefront/internal/domain/catalog"
	domain "github.com/gastroshop/storefront/internal/domain/checkout"
	"github.com/gastroshop/storefront/internal/domain/order"
	"github.com/gastroshop/storefront/internal/domain/payment"
)

// MockCatalog is a mock implementation of catalog.Lookup
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetBySlug(ctx context.Context, slug string) (*catalog.CanonicalProduct, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.CanonicalProduct), args.Error(1)
}

// MockOrderService is a mock implementation of order.Service
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, req order.CreateRequest, idempotencyKey string) (*order.Order, error) {
	args := m.Called(ctx, req, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, id int64) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

// MockGateway is a mock implementation of payment.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Create(ctx context.Context, orderID int64) (*payment.Session, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Session), args.Error(1)
}

func (m *MockGateway) Status(ctx context.Context, paymentID string) (*payment.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockGateway) MockComplete(ctx context.Context, paymentID string) (*payment.Completion, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Completion), args.Error(1)
}

// MockMetrics is a mock implementation of Metrics
type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordOrderCreated(ctx context.Context, amountCents int64) {
	m.Called(ctx, amountCents)
}

func (m *MockMetrics) RecordReconciliationFailure(ctx context.Context, unresolved int) {
	m.Called(ctx, unresolved)
}

func (m *MockMetrics) RecordOrderFailure(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockMetrics) RecordSubmissionRejected(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockMetrics) RecordDeferredPayment(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockMetrics) RecordPaymentOutcome(ctx context.Context, status string) {
	m.Called(ctx, status)
}

// MockSession is a mock implementation of checkout.SessionChecker
type MockSession struct {
	mock.Mock
}

func (m *MockSession) IsAuthenticated(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

// memoryCorrelation is an in-memory checkout.CorrelationStore
type memoryCorrelation struct {
	mu        sync.Mutex
	orderID   int64
	paymentID string
	saveErr   error
}

func (s *memoryCorrelation) SaveOrderID(ctx context.Context, orderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.saveErr != nil {
		return s.saveErr
	}
	s.orderID = orderID
	s.paymentID = ""
	return nil
}

func (s *memoryCorrelation) SavePaymentID(ctx context.Context, paymentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.saveErr != nil {
		return s.saveErr
	}
	s.paymentID = paymentID
	return nil
}

func (s *memoryCorrelation) Load(context.Context) (domain.Correlation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.orderID == 0 {
		return domain.Correlation{}, false, nil
	}
	return domain.Correlation{OrderID: s.orderID, PaymentID: s.paymentID}, true, nil
}

// memorySnapshots is an in-memory cart.SnapshotStore
type memorySnapshots struct {
	mu   sync.Mutex
	snap *cart.Snapshot
	err  error
}

func (s *memorySnapshots) LoadSnapshot(context.Context) (cart.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return cart.Snapshot{}, false, nil
	}
	return *s.snap, true, nil
}

func (s *memorySnapshots) SaveSnapshot(ctx context.Context, snap cart.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.err != nil {
		return s.err
	}
	s.snap = &snap
	return nil
}

// fakeLock is a checkout.SubmissionLock with a fixed answer
type fakeLock struct {
	mu       sync.Mutex
	held     bool
	refuse   bool
	released int
}

func (l *fakeLock) TryAcquire(context.Context, string, time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.refuse || l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *fakeLock) Release(context.Context, string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = false
	l.released++
	return nil
}
