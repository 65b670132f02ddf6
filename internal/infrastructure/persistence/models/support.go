package models

import (
	"github.com/aquaportal/backend/internal/domain/support"
	"github.com/google/uuid"
)

// ComplaintModel is the persistence model for complaints
type ComplaintModel struct {
	AggregateModel
	CustomerID    uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Subject       string                    `gorm:"type:varchar(200);not null"`
	Description   string                    `gorm:"type:text;not null"`
	Status        support.ComplaintStatus   `gorm:"type:varchar(20);not null;default:'open';index"`
	Priority      support.ComplaintPriority `gorm:"type:varchar(20);not null;default:'medium'"`
	AdminResponse *string                   `gorm:"type:text"`
	AttachmentKey *string                   `gorm:"type:varchar(500)"`
}

func (ComplaintModel) TableName() string {
	return "complaints"
}

func (m *ComplaintModel) ToDomain() *support.Complaint {
	return &support.Complaint{
		BaseAggregateRoot: m.AggregateModel.ToDomain(),
		CustomerID:        m.CustomerID,
		Subject:           m.Subject,
		Description:       m.Description,
		Status:            m.Status,
		Priority:          m.Priority,
		AdminResponse:     m.AdminResponse,
		AttachmentKey:     m.AttachmentKey,
	}
}

func ComplaintModelFromDomain(c *support.Complaint) *ComplaintModel {
	m := &ComplaintModel{
		CustomerID:    c.CustomerID,
		Subject:       c.Subject,
		Description:   c.Description,
		Status:        c.Status,
		Priority:      c.Priority,
		AdminResponse: c.AdminResponse,
		AttachmentKey: c.AttachmentKey,
	}
	m.AggregateModel.FromDomain(c.BaseAggregateRoot)
	return m
}

// All lists every model, in dependency order, for AutoMigrate in tests
func All() []any {
	return []any{
		&AccountModel{},
		&ProfileModel{},
		&BillModel{},
		&PaymentModel{},
		&ComplaintModel{},
	}
}
