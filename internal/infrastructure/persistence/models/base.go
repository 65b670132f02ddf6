package models

import (
	"time"

	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateModel holds the identity, timestamp and version columns shared
// by every table.
type AggregateModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
	Version   int       `gorm:"not null;default:1"`
}

// FromDomain copies the aggregate root columns
func (m *AggregateModel) FromDomain(a shared.BaseAggregateRoot) {
	m.ID = a.ID
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
	m.Version = a.Version
}

// ToDomain rebuilds the aggregate root without pending events
func (m *AggregateModel) ToDomain() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Version: m.Version,
	}
}
