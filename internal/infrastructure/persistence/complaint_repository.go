package persistence

import (
	"context"

	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/aquaportal/backend/internal/domain/support"
	"github.com/aquaportal/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormComplaintRepository implements support.ComplaintRepository using GORM
type GormComplaintRepository struct {
	db *gorm.DB
}

// NewGormComplaintRepository creates a new GormComplaintRepository
func NewGormComplaintRepository(db *gorm.DB) *GormComplaintRepository {
	return &GormComplaintRepository{db: db}
}

// Create inserts a complaint
func (r *GormComplaintRepository) Create(ctx context.Context, complaint *support.Complaint) error {
	model := models.ComplaintModelFromDomain(complaint)
	return translateError(r.db.WithContext(ctx).Create(model).Error)
}

// Update overwrites every column of an existing complaint
func (r *GormComplaintRepository) Update(ctx context.Context, complaint *support.Complaint) error {
	model := models.ComplaintModelFromDomain(complaint)
	return updateAll(ctx, r.db, model, model.ID)
}

// FindByID finds a complaint by ID
func (r *GormComplaintRepository) FindByID(ctx context.Context, id uuid.UUID) (*support.Complaint, error) {
	var model models.ComplaintModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// List returns complaints matching the filter, newest first
func (r *GormComplaintRepository) List(ctx context.Context, filter support.ComplaintFilter, opts shared.ListOptions) ([]*support.Complaint, int64, error) {
	opts = opts.Normalize()
	query := reusable(r.filtered(ctx, filter))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ComplaintModel
	if err := newestFirst(query).
		Offset(opts.Offset()).
		Limit(opts.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	complaints := make([]*support.Complaint, len(rows))
	for i := range rows {
		complaints[i] = rows[i].ToDomain()
	}
	return complaints, total, nil
}

// Count counts complaints matching the filter
func (r *GormComplaintRepository) Count(ctx context.Context, filter support.ComplaintFilter) (int64, error) {
	var count int64
	err := r.filtered(ctx, filter).Count(&count).Error
	return count, err
}

func (r *GormComplaintRepository) filtered(ctx context.Context, filter support.ComplaintFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.ComplaintModel{})
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

var _ support.ComplaintRepository = (*GormComplaintRepository)(nil)
