package models

import (
	"time"

	"github.com/aquaportal/backend/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentModel is the persistence model for payments
type PaymentModel struct {
	AggregateModel
	BillID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Method        payment.Method  `gorm:"type:varchar(20);not null"`
	TransactionID string          `gorm:"type:varchar(100)"`
	PaymentDate   time.Time       `gorm:"not null"`
	Status        payment.Status  `gorm:"type:varchar(20);not null;default:'pending';index"`
	ReviewNote    string          `gorm:"type:text"`
	ReviewedBy    *uuid.UUID      `gorm:"type:uuid"`
	ReviewedAt    *time.Time
}

func (PaymentModel) TableName() string {
	return "payments"
}

func (m *PaymentModel) ToDomain() *payment.Payment {
	return &payment.Payment{
		BaseAggregateRoot: m.AggregateModel.ToDomain(),
		BillID:            m.BillID,
		CustomerID:        m.CustomerID,
		Amount:            m.Amount,
		Method:            m.Method,
		TransactionID:     m.TransactionID,
		PaymentDate:       m.PaymentDate,
		Status:            m.Status,
		ReviewNote:        m.ReviewNote,
		ReviewedBy:        m.ReviewedBy,
		ReviewedAt:        m.ReviewedAt,
	}
}

func PaymentModelFromDomain(p *payment.Payment) *PaymentModel {
	m := &PaymentModel{
		BillID:        p.BillID,
		CustomerID:    p.CustomerID,
		Amount:        p.Amount,
		Method:        p.Method,
		TransactionID: p.TransactionID,
		PaymentDate:   p.PaymentDate,
		Status:        p.Status,
		ReviewNote:    p.ReviewNote,
		ReviewedBy:    p.ReviewedBy,
		ReviewedAt:    p.ReviewedAt,
	}
	m.AggregateModel.FromDomain(p.BaseAggregateRoot)
	return m
}
