package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/aquaportal/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Method is how the customer says they paid
type Method string

const (
	MethodMpesa        Method = "mpesa"
	MethodBankTransfer Method = "bank_transfer"
	MethodCash         Method = "cash"
)

// IsValid checks if the method is a valid Method
func (m Method) IsValid() bool {
	switch m {
	case MethodMpesa, MethodBankTransfer, MethodCash:
		return true
	}
	return false
}

func (m Method) String() string {
	return string(m)
}

// Status represents the review state of a payment
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// Payment records that a bill was paid. The result is asserted by the
// customer or an admin; no gateway is consulted.
type Payment struct {
	shared.BaseAggregateRoot
	BillID        uuid.UUID
	CustomerID    uuid.UUID
	Amount        decimal.Decimal
	Method        Method
	TransactionID string
	PaymentDate   time.Time
	Status        Status
	ReviewNote    string
	ReviewedBy    *uuid.UUID
	ReviewedAt    *time.Time
}

// Details are the caller-supplied fields of a payment
type Details struct {
	Amount        decimal.Decimal
	Method        Method
	TransactionID string
	// PaymentDate defaults to the submission time when zero
	PaymentDate time.Time
}

// MaxAmount is the largest amount the DECIMAL(12,2) column holds
var MaxAmount = decimal.RequireFromString("9999999999.99")

// Validate checks details before anything is written. The amount is judged
// at the two-decimal scale it is stored with.
func (d Details) Validate() error {
	amount := valueobject.RoundCurrency(d.Amount)
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if amount.GreaterThan(MaxAmount) {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount cannot exceed "+MaxAmount.String())
	}
	if !d.Method.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidMethod,
			fmt.Sprintf("Payment method must be one of mpesa, bank_transfer, cash; got %q", d.Method))
	}
	if len(d.TransactionID) > 100 {
		return shared.NewDomainError("INVALID_TRANSACTION_ID", "Transaction ID cannot exceed 100 characters")
	}
	return nil
}

// NewPayment creates a completed payment against billID for customerID.
// The amount is not compared with the bill amount.
func NewPayment(billID, customerID uuid.UUID, details Details) (*Payment, error) {
	if billID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BILL", "Bill ID cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if err := details.Validate(); err != nil {
		return nil, err
	}

	paidAt := details.PaymentDate
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	p := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BillID:            billID,
		CustomerID:        customerID,
		Amount:            valueobject.RoundCurrency(details.Amount),
		Method:            details.Method,
		TransactionID:     strings.TrimSpace(details.TransactionID),
		PaymentDate:       paidAt,
		Status:            StatusCompleted,
	}
	p.AddDomainEvent(NewPaymentRecordedEvent(p))
	return p, nil
}

// Review sets the outcome decided by an admin
func (p *Payment) Review(reviewer uuid.UUID, status Status, note string) error {
	if status != StatusCompleted && status != StatusFailed {
		return shared.NewDomainError(shared.CodeInvalidStatus, "Review status must be completed or failed")
	}
	if reviewer == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Reviewer is required")
	}
	if len(note) > 1000 {
		return shared.NewDomainError("INVALID_NOTE", "Review note cannot exceed 1000 characters")
	}

	now := time.Now()
	p.Status = status
	p.ReviewNote = strings.TrimSpace(note)
	p.ReviewedBy = &reviewer
	p.ReviewedAt = &now
	p.IncrementVersion()
	p.AddDomainEvent(NewPaymentReviewedEvent(p))
	return nil
}

// AmountMoney returns the amount as Money
func (p *Payment) AmountMoney() valueobject.Money {
	return valueobject.KESAmount(p.Amount)
}
