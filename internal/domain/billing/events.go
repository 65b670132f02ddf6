package billing

import (
	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const AggregateTypeBill = "Bill"

const (
	EventTypeBillIssued  = "BillIssued"
	EventTypeBillRevised = "BillRevised"
	EventTypeBillPaid    = "BillPaid"
	EventTypeBillOverdue = "BillOverdue"
)

// BillIssuedEvent is raised when an admin creates a bill
type BillIssuedEvent struct {
	shared.BaseDomainEvent
	MeterNumber   string          `json:"meter_number"`
	BillingMonth  string          `json:"billing_month"`
	UnitsConsumed decimal.Decimal `json:"units_consumed"`
	Amount        decimal.Decimal `json:"amount"`
}

func NewBillIssuedEvent(b *Bill) *BillIssuedEvent {
	return &BillIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillIssued, AggregateTypeBill, b.ID, b.CustomerID),
		MeterNumber:     b.MeterNumber,
		BillingMonth:    b.BillingMonth,
		UnitsConsumed:   b.UnitsConsumed,
		Amount:          b.Amount,
	}
}

// BillRevisedEvent is raised when readings or rate change
type BillRevisedEvent struct {
	shared.BaseDomainEvent
	UnitsConsumed decimal.Decimal `json:"units_consumed"`
	Amount        decimal.Decimal `json:"amount"`
}

func NewBillRevisedEvent(b *Bill) *BillRevisedEvent {
	return &BillRevisedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillRevised, AggregateTypeBill, b.ID, b.CustomerID),
		UnitsConsumed:   b.UnitsConsumed,
		Amount:          b.Amount,
	}
}

// BillPaidEvent is raised when a payment settles the bill
type BillPaidEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID `json:"payment_id"`
}

func NewBillPaidEvent(b *Bill, paymentID uuid.UUID) *BillPaidEvent {
	return &BillPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillPaid, AggregateTypeBill, b.ID, b.CustomerID),
		PaymentID:       paymentID,
	}
}

// BillOverdueEvent is raised by the overdue sweep
type BillOverdueEvent struct {
	shared.BaseDomainEvent
	Amount decimal.Decimal `json:"amount"`
}

func NewBillOverdueEvent(b *Bill) *BillOverdueEvent {
	return &BillOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillOverdue, AggregateTypeBill, b.ID, b.CustomerID),
		Amount:          b.Amount,
	}
}
