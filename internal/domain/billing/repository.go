package billing

import (
	"context"
	"time"

	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillFilter narrows a bill listing. A nil CustomerID lists every customer.
type BillFilter struct {
	CustomerID *uuid.UUID
	Status     *BillStatus
}

// BillRepository persists bills. Bills are never deleted here.
type BillRepository interface {
	Create(ctx context.Context, bill *Bill) error
	Update(ctx context.Context, bill *Bill) error
	// UpdateStatus writes only the status column
	UpdateStatus(ctx context.Context, id uuid.UUID, status BillStatus) error
	// TransitionStatus moves a bill from one status to another only if it
	// still holds from. It reports false when the row had already changed.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to BillStatus) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	// FindLatestForCustomer returns the newest bill of a customer or ErrNotFound
	FindLatestForCustomer(ctx context.Context, customerID uuid.UUID) (*Bill, error)
	List(ctx context.Context, filter BillFilter, opts shared.ListOptions) ([]*Bill, int64, error)
	FindPendingDueBefore(ctx context.Context, cutoff time.Time, limit int) ([]*Bill, error)
	Count(ctx context.Context, filter BillFilter) (int64, error)
	SumAmount(ctx context.Context, filter BillFilter) (decimal.Decimal, error)
}
