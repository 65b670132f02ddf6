package models

import (
	"time"

	"github.com/aquaportal/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillModel is the persistence model for bills. units_consumed and amount
// are written from the domain's derived values only.
type BillModel struct {
	AggregateModel
	CustomerID      uuid.UUID          `gorm:"type:uuid;not null;index"`
	MeterNumber     string             `gorm:"type:varchar(50);not null"`
	PreviousReading decimal.Decimal    `gorm:"type:decimal(12,2);not null"`
	CurrentReading  decimal.Decimal    `gorm:"type:decimal(12,2);not null"`
	RatePerUnit     decimal.Decimal    `gorm:"type:decimal(10,2);not null"`
	UnitsConsumed   decimal.Decimal    `gorm:"type:decimal(12,2);not null"`
	Amount          decimal.Decimal    `gorm:"type:decimal(12,2);not null"`
	BillingMonth    string             `gorm:"type:varchar(50);not null"`
	DueDate         time.Time          `gorm:"not null;index"`
	Status          billing.BillStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
}

func (BillModel) TableName() string {
	return "bills"
}

func (m *BillModel) ToDomain() *billing.Bill {
	return &billing.Bill{
		BaseAggregateRoot: m.AggregateModel.ToDomain(),
		CustomerID:        m.CustomerID,
		MeterNumber:       m.MeterNumber,
		PreviousReading:   m.PreviousReading,
		CurrentReading:    m.CurrentReading,
		RatePerUnit:       m.RatePerUnit,
		UnitsConsumed:     m.UnitsConsumed,
		Amount:            m.Amount,
		BillingMonth:      m.BillingMonth,
		DueDate:           m.DueDate,
		Status:            m.Status,
	}
}

func BillModelFromDomain(b *billing.Bill) *BillModel {
	m := &BillModel{
		CustomerID:      b.CustomerID,
		MeterNumber:     b.MeterNumber,
		PreviousReading: b.PreviousReading,
		CurrentReading:  b.CurrentReading,
		RatePerUnit:     b.RatePerUnit,
		UnitsConsumed:   b.UnitsConsumed,
		Amount:          b.Amount,
		BillingMonth:    b.BillingMonth,
		DueDate:         b.DueDate,
		Status:          b.Status,
	}
	m.AggregateModel.FromDomain(b.BaseAggregateRoot)
	return m
}
