package persistence

import (
	"context"
	"strings"

	"github.com/aquaportal/backend/internal/domain/identity"
	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/aquaportal/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAccountRepository implements identity.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// Create inserts an account. A taken email yields ErrAlreadyExists.
func (r *GormAccountRepository) Create(ctx context.Context, account *identity.Account) error {
	model := models.AccountModelFromDomain(account)
	return translateError(r.db.WithContext(ctx).Create(model).Error)
}

// Update overwrites every column of an existing account
func (r *GormAccountRepository) Update(ctx context.Context, account *identity.Account) error {
	model := models.AccountModelFromDomain(account)
	return updateAll(ctx, r.db, model, model.ID)
}

// FindByID finds an account by ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByEmail finds an account by email, ignoring case
func (r *GormAccountRepository) FindByEmail(ctx context.Context, email string) (*identity.Account, error) {
	if email == "" {
		return nil, shared.ErrNotFound
	}
	var model models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// ExistsByEmail checks whether an email is already registered
func (r *GormAccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GormProfileRepository implements identity.ProfileRepository using GORM
type GormProfileRepository struct {
	db *gorm.DB
}

// NewGormProfileRepository creates a new GormProfileRepository
func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// Create inserts a profile. A taken meter number yields ErrAlreadyExists.
func (r *GormProfileRepository) Create(ctx context.Context, profile *identity.Profile) error {
	model := models.ProfileModelFromDomain(profile)
	return translateError(r.db.WithContext(ctx).Create(model).Error)
}

// Update overwrites every column of an existing profile
func (r *GormProfileRepository) Update(ctx context.Context, profile *identity.Profile) error {
	model := models.ProfileModelFromDomain(profile)
	return updateAll(ctx, r.db, model, model.ID)
}

// FindByID finds a profile by ID
func (r *GormProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Profile, error) {
	var model models.ProfileModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByUserID finds the profile owned by an account
func (r *GormProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*identity.Profile, error) {
	var model models.ProfileModel
	if err := r.db.WithContext(ctx).First(&model, "user_id = ?", userID).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// ExistsByMeterNumber checks whether another profile already holds the meter
func (r *GormProfileRepository) ExistsByMeterNumber(ctx context.Context, meterNumber string, excludeID uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ProfileModel{}).
		Where("meter_number = ?", meterNumber)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListCustomers returns non-admin profiles, newest first
func (r *GormProfileRepository) ListCustomers(ctx context.Context, opts shared.ListOptions) ([]*identity.Profile, int64, error) {
	opts = opts.Normalize()
	query := reusable(r.db.WithContext(ctx).Model(&models.ProfileModel{}).Where("is_admin = ?", false))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ProfileModel
	if err := newestFirst(query).
		Offset(opts.Offset()).
		Limit(opts.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	profiles := make([]*identity.Profile, len(rows))
	for i := range rows {
		profiles[i] = rows[i].ToDomain()
	}
	return profiles, total, nil
}

// CountCustomers counts non-admin profiles
func (r *GormProfileRepository) CountCustomers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProfileModel{}).
		Where("is_admin = ?", false).
		Count(&count).Error
	return count, err
}

// GormRegistrationScope implements identity.RegistrationScope with one
// GORM transaction per call.
type GormRegistrationScope struct {
	db *gorm.DB
}

// NewGormRegistrationScope creates a new GormRegistrationScope
func NewGormRegistrationScope(db *gorm.DB) *GormRegistrationScope {
	return &GormRegistrationScope{db: db}
}

// Execute runs fn with repositories bound to a single transaction
func (s *GormRegistrationScope) Execute(ctx context.Context, fn func(accounts identity.AccountRepository, profiles identity.ProfileRepository) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormAccountRepository(tx), NewGormProfileRepository(tx))
	})
}

var (
	_ identity.AccountRepository = (*GormAccountRepository)(nil)
	_ identity.ProfileRepository = (*GormProfileRepository)(nil)
	_ identity.RegistrationScope = (*GormRegistrationScope)(nil)
)
