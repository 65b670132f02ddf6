package identity

import (
	"context"
	"errors"

	"github.com/aquaportal/backend/internal/domain/access"
	"github.com/aquaportal/backend/internal/domain/identity"
	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/aquaportal/backend/internal/infrastructure/event"
	"github.com/aquaportal/backend/internal/infrastructure/logger"
	"github.com/aquaportal/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProfileService reads and updates profiles on behalf of a principal
type ProfileService struct {
	accounts  identity.AccountRepository
	profiles  identity.ProfileRepository
	policy    *access.Policy
	publisher shared.EventPublisher
}

// NewProfileService creates a new profile service
func NewProfileService(
	accounts identity.AccountRepository,
	profiles identity.ProfileRepository,
	policy *access.Policy,
	publisher shared.EventPublisher,
) *ProfileService {
	return &ProfileService{
		accounts:  accounts,
		profiles:  profiles,
		policy:    policy,
		publisher: publisher,
	}
}

// GetMyProfile returns the caller's own profile
func (s *ProfileService) GetMyProfile(ctx context.Context, principal identity.Principal) (*ProfileResponse, error) {
	if err := s.policy.Authorize(principal, access.ActionProfileReadOwn); err != nil {
		return nil, err
	}

	profile, err := s.profiles.FindByID(ctx, principal.ProfileID)
	if err != nil {
		return nil, err
	}
	resp := ToProfileResponse(profile)
	if account, err := s.accounts.FindByID(ctx, profile.UserID); err == nil {
		resp.Email = account.Email
	}
	return &resp, nil
}

// UpdateMyProfile changes the caller's contact fields. Meter number and
// admin flag are not reachable from here.
func (s *ProfileService) UpdateMyProfile(ctx context.Context, principal identity.Principal, input UpdateMyProfileInput) (*ProfileResponse, error) {
	if err := s.policy.Authorize(principal, access.ActionProfileUpdateOwn); err != nil {
		return nil, err
	}

	profile, err := s.profiles.FindByID(ctx, principal.ProfileID)
	if err != nil {
		return nil, err
	}
	if err := profile.UpdateContact(identity.ContactDetails{
		FullName: input.FullName,
		Phone:    input.Phone,
		Address:  input.Address,
	}); err != nil {
		return nil, err
	}
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}

	event.PublishDomainEvents(ctx, s.publisher, profile)
	logger.L(ctx).Info("Profile updated", zap.String("profile_id", profile.ID.String()))

	resp := ToProfileResponse(profile)
	return &resp, nil
}

// ListCustomers returns non-admin profiles, newest first
func (s *ProfileService) ListCustomers(ctx context.Context, principal identity.Principal, opts shared.ListOptions) (*CustomerListResult, error) {
	if err := s.policy.Authorize(principal, access.ActionCustomerList); err != nil {
		return nil, err
	}

	opts = opts.Normalize()
	profiles, total, err := s.profiles.ListCustomers(ctx, opts)
	if err != nil {
		return nil, err
	}

	items := make([]ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		items = append(items, ToProfileResponse(p))
	}
	result := shared.NewPaginated(items, total, opts)
	return &result, nil
}

// AdminUpdateProfile lets an administrator change any profile field,
// including the meter number and the admin flag
func (s *ProfileService) AdminUpdateProfile(ctx context.Context, principal identity.Principal, profileID uuid.UUID, input AdminUpdateProfileInput) (*ProfileResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "identity", "admin_update_profile")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrCustomerID, profileID.String())

	if err := s.policy.Authorize(principal, access.ActionCustomerUpdate); err != nil {
		return nil, err
	}
	if !input.HasChanges() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "No fields to update")
	}

	profile, err := s.profiles.FindByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil || input.Phone != nil || input.Address != nil {
		if err := profile.UpdateContact(identity.ContactDetails{
			FullName: input.FullName,
			Phone:    input.Phone,
			Address:  input.Address,
		}); err != nil {
			return nil, err
		}
	}
	if input.MeterNumber != nil {
		if err := profile.AssignMeter(*input.MeterNumber); err != nil {
			return nil, err
		}
		if profile.MeterNumber != nil {
			taken, err := s.profiles.ExistsByMeterNumber(ctx, *profile.MeterNumber, profile.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, errMeterTaken
			}
		}
	}
	if input.IsAdmin != nil {
		profile.SetAdmin(*input.IsAdmin)
	}

	if err := s.profiles.Update(ctx, profile); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, errMeterTaken
		}
		telemetry.RecordError(span, err)
		return nil, err
	}

	event.PublishDomainEvents(ctx, s.publisher, profile)
	logger.L(ctx).Info("Profile updated by admin",
		zap.String("profile_id", profile.ID.String()),
		zap.String("admin_profile_id", principal.ProfileID.String()),
	)

	resp := ToProfileResponse(profile)
	return &resp, nil
}
