package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/aquaportal/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillStatus represents the payment state of a bill
type BillStatus string

const (
	BillStatusPending BillStatus = "pending"
	BillStatusPaid    BillStatus = "paid"
	BillStatusOverdue BillStatus = "overdue"
)

// IsValid checks if the status is a valid BillStatus
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusPending, BillStatusPaid, BillStatusOverdue:
		return true
	}
	return false
}

func (s BillStatus) String() string {
	return string(s)
}

// Bill links two meter readings and a rate to a derived charge.
// UnitsConsumed and Amount are only ever written by setReadings.
type Bill struct {
	shared.BaseAggregateRoot
	CustomerID      uuid.UUID
	MeterNumber     string
	PreviousReading decimal.Decimal
	CurrentReading  decimal.Decimal
	RatePerUnit     decimal.Decimal
	UnitsConsumed   decimal.Decimal
	Amount          decimal.Decimal
	BillingMonth    string
	DueDate         time.Time
	Status          BillStatus
}

// NewBillInput carries the admin-entered fields of a bill
type NewBillInput struct {
	CustomerID      uuid.UUID
	MeterNumber     string
	PreviousReading decimal.Decimal
	CurrentReading  decimal.Decimal
	RatePerUnit     decimal.Decimal
	BillingMonth    string
	DueDate         time.Time
	Policy          ReadingPolicy
}

// NewBill validates the input and derives consumption and amount
func NewBill(in NewBillInput) (*Bill, error) {
	if in.CustomerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	meter := strings.TrimSpace(in.MeterNumber)
	if meter == "" {
		return nil, shared.NewDomainError("INVALID_METER_NUMBER", "Meter number is required")
	}
	if len(meter) > 50 {
		return nil, shared.NewDomainError("INVALID_METER_NUMBER", "Meter number cannot exceed 50 characters")
	}
	month := strings.TrimSpace(in.BillingMonth)
	if month == "" {
		return nil, shared.NewDomainError("INVALID_BILLING_MONTH", "Billing month is required")
	}
	if len(month) > 50 {
		return nil, shared.NewDomainError("INVALID_BILLING_MONTH", "Billing month cannot exceed 50 characters")
	}
	if in.DueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date is required")
	}

	b := &Bill{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        in.CustomerID,
		MeterNumber:       meter,
		BillingMonth:      month,
		DueDate:           in.DueDate,
		Status:            BillStatusPending,
	}
	if err := b.setReadings(in.PreviousReading, in.CurrentReading, in.RatePerUnit, in.Policy); err != nil {
		return nil, err
	}

	b.AddDomainEvent(NewBillIssuedEvent(b))
	return b, nil
}

// ReviseReadings replaces readings and rate and recomputes the charge.
// Nil arguments keep the stored value.
func (b *Bill) ReviseReadings(previous, current, rate *decimal.Decimal, policy ReadingPolicy) error {
	prev, cur, r := b.PreviousReading, b.CurrentReading, b.RatePerUnit
	if previous != nil {
		prev = *previous
	}
	if current != nil {
		cur = *current
	}
	if rate != nil {
		r = *rate
	}
	if err := b.setReadings(prev, cur, r, policy); err != nil {
		return err
	}
	b.IncrementVersion()
	b.AddDomainEvent(NewBillRevisedEvent(b))
	return nil
}

// setReadings stores readings and rate at the two-decimal scale of their
// columns, so the derived charge matches what is read back.
func (b *Bill) setReadings(previous, current, rate decimal.Decimal, policy ReadingPolicy) error {
	previous = valueobject.RoundCurrency(previous)
	current = valueobject.RoundCurrency(current)
	rate = valueobject.RoundCurrency(rate)
	if err := ValidateReading("Previous reading", previous); err != nil {
		return err
	}
	if err := ValidateReading("Current reading", current); err != nil {
		return err
	}
	if err := ValidateRate(rate); err != nil {
		return err
	}
	previous, current, err := ApplyReadingPolicy(policy, previous, current)
	if err != nil {
		return err
	}
	charge := ComputeCharge(previous, current, rate)
	if err := ValidateCharge(charge); err != nil {
		return err
	}

	b.PreviousReading = previous
	b.CurrentReading = current
	b.RatePerUnit = rate
	b.UnitsConsumed = charge.UnitsConsumed
	b.Amount = charge.Amount
	return nil
}

// MarkPaid sets the status to paid. A payment always settles the bill,
// whatever its prior status.
func (b *Bill) MarkPaid(paymentID uuid.UUID) {
	b.Status = BillStatusPaid
	b.IncrementVersion()
	b.AddDomainEvent(NewBillPaidEvent(b, paymentID))
}

// MarkOverdue flags a pending bill whose due date has passed
func (b *Bill) MarkOverdue(now time.Time) error {
	if b.Status != BillStatusPending {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot mark %s bill overdue", b.Status))
	}
	if !b.DueDate.Before(now) {
		return shared.NewDomainError(shared.CodeInvalidState, "Bill is not past its due date")
	}
	b.Status = BillStatusOverdue
	b.IncrementVersion()
	b.AddDomainEvent(NewBillOverdueEvent(b))
	return nil
}

// ReopenAfterFailedPayment returns a paid bill to pending
func (b *Bill) ReopenAfterFailedPayment() bool {
	if b.Status != BillStatusPaid {
		return false
	}
	b.Status = BillStatusPending
	b.IncrementVersion()
	return true
}

// AmountMoney returns the amount as Money
func (b *Bill) AmountMoney() valueobject.Money {
	return valueobject.KESAmount(b.Amount)
}
