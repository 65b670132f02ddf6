package support

import (
	"context"

	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ComplaintFilter narrows a complaint listing. Nil fields do not filter.
type ComplaintFilter struct {
	CustomerID *uuid.UUID
	Status     *ComplaintStatus
}

// ComplaintRepository persists complaints
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *Complaint) error
	Update(ctx context.Context, complaint *Complaint) error
	FindByID(ctx context.Context, id uuid.UUID) (*Complaint, error)
	List(ctx context.Context, filter ComplaintFilter, opts shared.ListOptions) ([]*Complaint, int64, error)
	Count(ctx context.Context, filter ComplaintFilter) (int64, error)
}
