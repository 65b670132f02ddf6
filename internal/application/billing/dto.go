package billing

import (
	"time"

	"github.com/aquaportal/backend/internal/domain/billing"
	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateBillInput holds the admin-entered fields of a new bill. Units and
// amount are always derived and cannot be supplied.
type CreateBillInput struct {
	CustomerID uuid.UUID
	// MeterNumber defaults to the customer's assigned meter
	MeterNumber *string
	// PreviousReading defaults to the current reading of the customer's latest bill, else zero
	PreviousReading *decimal.Decimal
	CurrentReading  decimal.Decimal
	// RatePerUnit defaults to the configured tariff
	RatePerUnit  *decimal.Decimal
	BillingMonth string
	// DueDate defaults to the configured number of days after issue
	DueDate *time.Time
}

// ReviseReadingsInput replaces readings or rate. Nil fields keep the stored value.
type ReviseReadingsInput struct {
	PreviousReading *decimal.Decimal
	CurrentReading  *decimal.Decimal
	RatePerUnit     *decimal.Decimal
}

// ListBillsFilter narrows a bill listing
type ListBillsFilter struct {
	Status     *billing.BillStatus
	CustomerID *uuid.UUID
	shared.ListOptions
}

// BillResponse is the API view of a bill
type BillResponse struct {
	ID              uuid.UUID          `json:"id"`
	CustomerID      uuid.UUID          `json:"customer_id"`
	MeterNumber     string             `json:"meter_number"`
	PreviousReading decimal.Decimal    `json:"previous_reading"`
	CurrentReading  decimal.Decimal    `json:"current_reading"`
	RatePerUnit     decimal.Decimal    `json:"rate_per_unit"`
	UnitsConsumed   decimal.Decimal    `json:"units_consumed"`
	Amount          decimal.Decimal    `json:"amount"`
	AmountDisplay   string             `json:"amount_display"`
	BillingMonth    string             `json:"billing_month"`
	DueDate         time.Time          `json:"due_date"`
	Status          billing.BillStatus `json:"status"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// ToBillResponse converts a domain bill
func ToBillResponse(b *billing.Bill) BillResponse {
	return BillResponse{
		ID:              b.ID,
		CustomerID:      b.CustomerID,
		MeterNumber:     b.MeterNumber,
		PreviousReading: b.PreviousReading,
		CurrentReading:  b.CurrentReading,
		RatePerUnit:     b.RatePerUnit,
		UnitsConsumed:   b.UnitsConsumed,
		Amount:          b.Amount,
		AmountDisplay:   b.AmountMoney().Format(),
		BillingMonth:    b.BillingMonth,
		DueDate:         b.DueDate,
		Status:          b.Status,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// BillListResult is a page of bills
type BillListResult = shared.Paginated[BillResponse]
