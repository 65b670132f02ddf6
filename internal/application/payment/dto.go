package payment

import (
	"time"

	"github.com/aquaportal/backend/internal/domain/billing"
	"github.com/aquaportal/backend/internal/domain/payment"
	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordPaymentInput holds the caller-asserted payment details
type RecordPaymentInput struct {
	Amount        decimal.Decimal
	Method        payment.Method
	TransactionID string
	// PaymentDate defaults to the submission time
	PaymentDate *time.Time
}

func (in RecordPaymentInput) details() payment.Details {
	d := payment.Details{
		Amount:        in.Amount,
		Method:        in.Method,
		TransactionID: in.TransactionID,
	}
	if in.PaymentDate != nil {
		d.PaymentDate = *in.PaymentDate
	}
	return d
}

// RecordPaymentResult reports the stored payment and the bill status it produced
type RecordPaymentResult struct {
	Payment    PaymentResponse    `json:"payment"`
	BillStatus billing.BillStatus `json:"bill_status"`
}

// ReviewPaymentInput holds an admin's review outcome
type ReviewPaymentInput struct {
	Status payment.Status
	Note   string
}

// ReviewPaymentResult reports the reviewed payment and its bill's status
type ReviewPaymentResult struct {
	Payment    PaymentResponse    `json:"payment"`
	BillStatus billing.BillStatus `json:"bill_status"`
}

// ListPaymentsFilter narrows a payment listing
type ListPaymentsFilter struct {
	BillID     *uuid.UUID
	CustomerID *uuid.UUID
	Status     *payment.Status
	shared.ListOptions
}

// PaymentResponse is the API view of a payment
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	BillID        uuid.UUID       `json:"bill_id"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	Amount        decimal.Decimal `json:"amount"`
	AmountDisplay string          `json:"amount_display"`
	Method        payment.Method  `json:"method"`
	TransactionID string          `json:"transaction_id,omitempty"`
	PaymentDate   time.Time       `json:"payment_date"`
	Status        payment.Status  `json:"status"`
	ReviewNote    string          `json:"review_note,omitempty"`
	ReviewedBy    *uuid.UUID      `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time      `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToPaymentResponse converts a domain payment
func ToPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		BillID:        p.BillID,
		CustomerID:    p.CustomerID,
		Amount:        p.Amount,
		AmountDisplay: p.AmountMoney().Format(),
		Method:        p.Method,
		TransactionID: p.TransactionID,
		PaymentDate:   p.PaymentDate,
		Status:        p.Status,
		ReviewNote:    p.ReviewNote,
		ReviewedBy:    p.ReviewedBy,
		ReviewedAt:    p.ReviewedAt,
		CreatedAt:     p.CreatedAt,
	}
}

// PaymentListResult is a page of payments
type PaymentListResult = shared.Paginated[PaymentResponse]
