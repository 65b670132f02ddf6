package payment

import (
	"context"
	"time"

	"github.com/aquaportal/backend/internal/domain/billing"
	"github.com/aquaportal/backend/internal/domain/payment"
	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockBillRepository is a mock implementation of billing.BillRepository
type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) Create(ctx context.Context, bill *billing.Bill) error {
	return m.Called(ctx, bill).Error(0)
}

func (m *MockBillRepository) Update(ctx context.Context, bill *billing.Bill) error {
	return m.Called(ctx, bill).Error(0)
}

func (m *MockBillRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status billing.BillStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockBillRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to billing.BillStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *MockBillRepository) FindLatestForCustomer(ctx context.Context, customerID uuid.UUID) (*billing.Bill, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *MockBillRepository) List(ctx context.Context, filter billing.BillFilter, opts shared.ListOptions) ([]*billing.Bill, int64, error) {
	args := m.Called(ctx, filter, opts)
	return args.Get(0).([]*billing.Bill), args.Get(1).(int64), args.Error(2)
}

func (m *MockBillRepository) FindPendingDueBefore(ctx context.Context, cutoff time.Time, limit int) ([]*billing.Bill, error) {
	args := m.Called(ctx, cutoff, limit)
	return args.Get(0).([]*billing.Bill), args.Error(1)
}

func (m *MockBillRepository) Count(ctx context.Context, filter billing.BillFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBillRepository) SumAmount(ctx context.Context, filter billing.BillFilter) (decimal.Decimal, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockPaymentRepository is a mock implementation of payment.Repository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) List(ctx context.Context, filter payment.Filter, opts shared.ListOptions) ([]*payment.Payment, int64, error) {
	args := m.Called(ctx, filter, opts)
	return args.Get(0).([]*payment.Payment), args.Get(1).(int64), args.Error(2)
}

func (m *MockPaymentRepository) SumAmount(ctx context.Context, filter payment.Filter) (decimal.Decimal, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// fakeSettlementScope hands fn the mocks directly and counts executions
type fakeSettlementScope struct {
	bills    *MockBillRepository
	payments *MockPaymentRepository
	calls    int
}

func (f *fakeSettlementScope) Execute(ctx context.Context, fn func(payment.Settlement) error) error {
	f.calls++
	return fn(payment.Settlement{Bills: f.bills, Payments: f.payments})
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}
