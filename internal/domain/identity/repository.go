package identity

import (
	"context"

	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AccountRepository persists login accounts
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	Update(ctx context.Context, account *Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// ProfileRepository persists profiles. Profiles are never deleted here.
type ProfileRepository interface {
	Create(ctx context.Context, profile *Profile) error
	Update(ctx context.Context, profile *Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	ExistsByMeterNumber(ctx context.Context, meterNumber string, excludeID uuid.UUID) (bool, error)
	// ListCustomers returns non-admin profiles, newest first
	ListCustomers(ctx context.Context, opts shared.ListOptions) ([]*Profile, int64, error)
	CountCustomers(ctx context.Context) (int64, error)
}

// RegistrationScope creates an account and its profile atomically
type RegistrationScope interface {
	Execute(ctx context.Context, fn func(accounts AccountRepository, profiles ProfileRepository) error) error
}
