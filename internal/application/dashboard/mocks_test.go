package dashboard

import (
	"context"
	"time"

	"github.com/aquaportal/backend/internal/domain/billing"
	"github.com/aquaportal/backend/internal/domain/identity"
	"github.com/aquaportal/backend/internal/domain/payment"
	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/aquaportal/backend/internal/domain/support"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockBillRepository is a mock implementation of billing.BillRepository
type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) Create(ctx context.Context, bill *billing.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepository) Update(ctx context.Context, bill *billing.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status billing.BillStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
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

// MockProfileRepository is a mock implementation of identity.ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *identity.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) Update(ctx context.Context, profile *identity.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Profile), args.Error(1)
}

func (m *MockProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*identity.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Profile), args.Error(1)
}

func (m *MockProfileRepository) ExistsByMeterNumber(ctx context.Context, meterNumber string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, meterNumber, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProfileRepository) ListCustomers(ctx context.Context, opts shared.ListOptions) ([]*identity.Profile, int64, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).([]*identity.Profile), args.Get(1).(int64), args.Error(2)
}

func (m *MockProfileRepository) CountCustomers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
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

// MockComplaintRepository is a mock implementation of support.ComplaintRepository
type MockComplaintRepository struct {
	mock.Mock
}

func (m *MockComplaintRepository) Create(ctx context.Context, complaint *support.Complaint) error {
	args := m.Called(ctx, complaint)
	return args.Error(0)
}

func (m *MockComplaintRepository) Update(ctx context.Context, complaint *support.Complaint) error {
	args := m.Called(ctx, complaint)
	return args.Error(0)
}

func (m *MockComplaintRepository) FindByID(ctx context.Context, id uuid.UUID) (*support.Complaint, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*support.Complaint), args.Error(1)
}

func (m *MockComplaintRepository) List(ctx context.Context, filter support.ComplaintFilter, opts shared.ListOptions) ([]*support.Complaint, int64, error) {
	args := m.Called(ctx, filter, opts)
	return args.Get(0).([]*support.Complaint), args.Get(1).(int64), args.Error(2)
}

func (m *MockComplaintRepository) Count(ctx context.Context, filter support.ComplaintFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}
