package persistence

import (
	"context"

	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// updateAll writes every column of model, including zero values, to the row
// with the given id. Missing rows yield ErrNotFound.
func updateAll(ctx context.Context, db *gorm.DB, model any, id uuid.UUID) error {
	result := db.WithContext(ctx).
		Model(model).
		Where("id = ?", id).
		Select("*").
		Updates(model)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// newestFirst orders by creation time with id as a stable tiebreaker
func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

// reusable lets one filtered query feed both Count and Find
func reusable(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{})
}

// sumAmount totals the amount column of a filtered query. An empty set sums
// to zero.
func sumAmount(query *gorm.DB) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := query.Select("SUM(amount)").Row().Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
