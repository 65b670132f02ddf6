package identity

import (
	"time"

	"github.com/aquaportal/backend/internal/domain/identity"
	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RegisterInput contains the input for self-service registration
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Phone    string
	Address  string
}

// LoginInput contains the input for login
type LoginInput struct {
	Email    string
	Password string
}

// RefreshInput carries the refresh token to exchange
type RefreshInput struct {
	RefreshToken string
}

// LogoutInput optionally names a refresh token to revoke with the session
type LogoutInput struct {
	RefreshToken string
}

// TokenResult is returned by login and refresh
type TokenResult struct {
	AccessToken           string          `json:"access_token"`
	RefreshToken          string          `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time       `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time       `json:"refresh_token_expires_at"`
	TokenType             string          `json:"token_type"`
	Profile               ProfileResponse `json:"profile"`
}

// ProfileResponse is the API view of a profile
type ProfileResponse struct {
	ID          uuid.UUID     `json:"id"`
	UserID      uuid.UUID     `json:"user_id"`
	Email       string        `json:"email,omitempty"`
	FullName    string        `json:"full_name"`
	Phone       string        `json:"phone,omitempty"`
	Address     string        `json:"address,omitempty"`
	MeterNumber *string       `json:"meter_number"`
	IsAdmin     bool          `json:"is_admin"`
	Role        identity.Role `json:"role"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// ToProfileResponse converts a domain profile
func ToProfileResponse(p *identity.Profile) ProfileResponse {
	return ProfileResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		FullName:    p.FullName,
		Phone:       p.Phone,
		Address:     p.Address,
		MeterNumber: p.MeterNumber,
		IsAdmin:     p.IsAdmin,
		Role:        p.Role(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// RegisterResult is returned after registration
type RegisterResult struct {
	AccountID uuid.UUID       `json:"account_id"`
	Email     string          `json:"email"`
	Profile   ProfileResponse `json:"profile"`
}

// UpdateMyProfileInput holds the contact fields a customer may change.
// Nil fields are left untouched.
type UpdateMyProfileInput struct {
	FullName *string
	Phone    *string
	Address  *string
}

// AdminUpdateProfileInput holds every field an admin may change.
// An empty MeterNumber clears the meter.
type AdminUpdateProfileInput struct {
	FullName    *string
	Phone       *string
	Address     *string
	MeterNumber *string
	IsAdmin     *bool
}

// HasChanges reports whether any field is set
func (in AdminUpdateProfileInput) HasChanges() bool {
	return in.FullName != nil || in.Phone != nil || in.Address != nil || in.MeterNumber != nil || in.IsAdmin != nil
}

// CustomerListResult is a page of customer profiles
type CustomerListResult = shared.Paginated[ProfileResponse]
