package payment

import (
	"context"

	"github.com/aquaportal/backend/internal/domain/billing"
	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Filter narrows a payment listing. Nil fields do not filter.
type Filter struct {
	CustomerID *uuid.UUID
	BillID     *uuid.UUID
	Status     *Status
}

// Repository persists payments
type Repository interface {
	Create(ctx context.Context, payment *Payment) error
	Update(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	List(ctx context.Context, filter Filter, opts shared.ListOptions) ([]*Payment, int64, error)
	SumAmount(ctx context.Context, filter Filter) (decimal.Decimal, error)
}

// Settlement bundles the repositories that must change together when a
// payment is recorded or reviewed.
type Settlement struct {
	Bills    billing.BillRepository
	Payments Repository
}

// SettlementScope runs fn inside one database transaction. Any error from
// fn rolls back every write made through the supplied repositories.
type SettlementScope interface {
	Execute(ctx context.Context, fn func(s Settlement) error) error
}
