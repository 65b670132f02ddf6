package persistence

import (
	"context"

	"github.com/aquaportal/backend/internal/domain/payment"
	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/aquaportal/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements payment.Repository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create inserts a payment
func (r *GormPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	model := models.PaymentModelFromDomain(p)
	return translateError(r.db.WithContext(ctx).Create(model).Error)
}

// Update overwrites every column of an existing payment
func (r *GormPaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	model := models.PaymentModelFromDomain(p)
	return updateAll(ctx, r.db, model, model.ID)
}

// FindByID finds a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// List returns payments matching the filter, newest first
func (r *GormPaymentRepository) List(ctx context.Context, filter payment.Filter, opts shared.ListOptions) ([]*payment.Payment, int64, error) {
	opts = opts.Normalize()
	query := reusable(r.filtered(ctx, filter))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.PaymentModel
	if err := newestFirst(query).
		Offset(opts.Offset()).
		Limit(opts.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	payments := make([]*payment.Payment, len(rows))
	for i := range rows {
		payments[i] = rows[i].ToDomain()
	}
	return payments, total, nil
}

// SumAmount totals the amount of payments matching the filter
func (r *GormPaymentRepository) SumAmount(ctx context.Context, filter payment.Filter) (decimal.Decimal, error) {
	return sumAmount(r.filtered(ctx, filter))
}

func (r *GormPaymentRepository) filtered(ctx context.Context, filter payment.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.PaymentModel{})
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.BillID != nil {
		query = query.Where("bill_id = ?", *filter.BillID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

// GormSettlementScope implements payment.SettlementScope. Bills and payments
// written through the supplied Settlement share one transaction.
type GormSettlementScope struct {
	db *gorm.DB
}

// NewGormSettlementScope creates a new GormSettlementScope
func NewGormSettlementScope(db *gorm.DB) *GormSettlementScope {
	return &GormSettlementScope{db: db}
}

// Execute runs fn inside a transaction and rolls back when it fails
func (s *GormSettlementScope) Execute(ctx context.Context, fn func(payment.Settlement) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(payment.Settlement{
			Bills:    NewGormBillRepository(tx),
			Payments: NewGormPaymentRepository(tx),
		})
	})
}

var (
	_ payment.Repository      = (*GormPaymentRepository)(nil)
	_ payment.SettlementScope = (*GormSettlementScope)(nil)
)
