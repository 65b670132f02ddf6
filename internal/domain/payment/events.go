package payment

import (
	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const AggregateTypePayment = "Payment"

const (
	EventTypePaymentRecorded = "PaymentRecorded"
	EventTypePaymentReviewed = "PaymentReviewed"
)

// PaymentRecordedEvent is raised when a payment is stored
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	BillID        uuid.UUID       `json:"bill_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        Method          `json:"method"`
	TransactionID string          `json:"transaction_id,omitempty"`
}

func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypePayment, p.ID, p.CustomerID),
		BillID:          p.BillID,
		Amount:          p.Amount,
		Method:          p.Method,
		TransactionID:   p.TransactionID,
	}
}

// PaymentReviewedEvent is raised when an admin confirms or fails a payment
type PaymentReviewedEvent struct {
	shared.BaseDomainEvent
	BillID uuid.UUID `json:"bill_id"`
	Status Status    `json:"status"`
	Note   string    `json:"note,omitempty"`
}

func NewPaymentReviewedEvent(p *Payment) *PaymentReviewedEvent {
	return &PaymentReviewedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentReviewed, AggregateTypePayment, p.ID, p.CustomerID),
		BillID:          p.BillID,
		Status:          p.Status,
		Note:            p.ReviewNote,
	}
}
