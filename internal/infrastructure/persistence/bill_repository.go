package persistence

import (
	"context"
	"time"

	"github.com/aquaportal/backend/internal/domain/billing"
	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/aquaportal/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormBillRepository implements billing.BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// Create inserts a bill
func (r *GormBillRepository) Create(ctx context.Context, bill *billing.Bill) error {
	model := models.BillModelFromDomain(bill)
	return translateError(r.db.WithContext(ctx).Create(model).Error)
}

// Update overwrites every column of an existing bill
func (r *GormBillRepository) Update(ctx context.Context, bill *billing.Bill) error {
	model := models.BillModelFromDomain(bill)
	return updateAll(ctx, r.db, model, model.ID)
}

// UpdateStatus writes the status column and bumps the version
func (r *GormBillRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status billing.BillStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.BillModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now(),
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// TransitionStatus updates the status only while the row still has from
func (r *GormBillRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to billing.BillStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.BillModel{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":     to,
			"updated_at": time.Now(),
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// FindByID finds a bill by ID
func (r *GormBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	var model models.BillModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindLatestForCustomer returns the customer's most recently created bill
func (r *GormBillRepository) FindLatestForCustomer(ctx context.Context, customerID uuid.UUID) (*billing.Bill, error) {
	var model models.BillModel
	if err := newestFirst(r.db.WithContext(ctx).Where("customer_id = ?", customerID)).
		Take(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// List returns bills matching the filter, newest first
func (r *GormBillRepository) List(ctx context.Context, filter billing.BillFilter, opts shared.ListOptions) ([]*billing.Bill, int64, error) {
	opts = opts.Normalize()
	query := reusable(r.filtered(ctx, filter))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.BillModel
	if err := newestFirst(query).
		Offset(opts.Offset()).
		Limit(opts.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return billsToDomain(rows), total, nil
}

// FindPendingDueBefore returns up to limit pending bills whose due date is
// before cutoff, oldest due date first.
func (r *GormBillRepository) FindPendingDueBefore(ctx context.Context, cutoff time.Time, limit int) ([]*billing.Bill, error) {
	var rows []models.BillModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND due_date < ?", billing.BillStatusPending, cutoff).
		Order("due_date ASC").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return billsToDomain(rows), nil
}

// Count counts bills matching the filter
func (r *GormBillRepository) Count(ctx context.Context, filter billing.BillFilter) (int64, error) {
	var count int64
	err := r.filtered(ctx, filter).Count(&count).Error
	return count, err
}

// SumAmount totals the amount of bills matching the filter
func (r *GormBillRepository) SumAmount(ctx context.Context, filter billing.BillFilter) (decimal.Decimal, error) {
	return sumAmount(r.filtered(ctx, filter))
}

func (r *GormBillRepository) filtered(ctx context.Context, filter billing.BillFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.BillModel{})
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

func billsToDomain(rows []models.BillModel) []*billing.Bill {
	bills := make([]*billing.Bill, len(rows))
	for i := range rows {
		bills[i] = rows[i].ToDomain()
	}
	return bills
}

var _ billing.BillRepository = (*GormBillRepository)(nil)
