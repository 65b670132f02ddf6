// Package identity implements account registration, sessions and profile
// management.
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/aquaportal/backend/internal/domain/identity"
	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/aquaportal/backend/internal/infrastructure/auth"
	"github.com/aquaportal/backend/internal/infrastructure/event"
	"github.com/aquaportal/backend/internal/infrastructure/logger"
	"github.com/aquaportal/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// TokenBlacklist revokes token IDs before they expire
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthService handles registration and session operations
type AuthService struct {
	accounts     identity.AccountRepository
	profiles     identity.ProfileRepository
	registration identity.RegistrationScope
	jwtService   *auth.JWTService
	blacklist    TokenBlacklist
	publisher    shared.EventPublisher
}

// NewAuthService creates a new authentication service
func NewAuthService(
	accounts identity.AccountRepository,
	profiles identity.ProfileRepository,
	registration identity.RegistrationScope,
	jwtService *auth.JWTService,
	blacklist TokenBlacklist,
	publisher shared.EventPublisher,
) *AuthService {
	return &AuthService{
		accounts:     accounts,
		profiles:     profiles,
		registration: registration,
		jwtService:   jwtService,
		blacklist:    blacklist,
		publisher:    publisher,
	}
}

// Register creates an account and its customer profile in one transaction
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "identity", "register")
	defer span.End()

	account, err := identity.NewAccount(input.Email, input.Password)
	if err != nil {
		return nil, err
	}
	profile, err := identity.NewProfileWithContact(account.ID, input.FullName, input.Phone, input.Address)
	if err != nil {
		return nil, err
	}

	exists, err := s.accounts.ExistsByEmail(ctx, account.Email)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if exists {
		return nil, errEmailTaken
	}

	err = s.registration.Execute(ctx, func(accounts identity.AccountRepository, profiles identity.ProfileRepository) error {
		if err := accounts.Create(ctx, account); err != nil {
			return err
		}
		return profiles.Create(ctx, profile)
	})
	if err != nil {
		// A concurrent registration can win the unique index after the check above
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, errEmailTaken
		}
		telemetry.RecordError(span, err)
		logger.L(ctx).Error("Failed to register account", zap.Error(err))
		return nil, err
	}

	event.PublishDomainEvents(ctx, s.publisher, profile)
	logger.L(ctx).Info("Account registered",
		zap.String("account_id", account.ID.String()),
		zap.String("profile_id", profile.ID.String()),
	)

	resp := ToProfileResponse(profile)
	resp.Email = account.Email
	return &RegisterResult{AccountID: account.ID, Email: account.Email, Profile: resp}, nil
}

// Login verifies credentials and issues a token pair
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*TokenResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "identity", "login")
	defer span.End()

	account, err := s.accounts.FindByEmail(ctx, identity.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			logger.L(ctx).Warn("Login for unknown email")
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !account.VerifyPassword(input.Password) {
		logger.L(ctx).Warn("Invalid password attempt", zap.String("account_id", account.ID.String()))
		return nil, errInvalidCredentials
	}
	if !account.Active {
		return nil, errAccountInactive
	}

	profile, err := s.profiles.FindByUserID(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	result, err := s.issueTokens(account, profile)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	account.RecordLogin()
	if err := s.accounts.Update(ctx, account); err != nil {
		// The session is valid; only the audit timestamp is lost
		logger.L(ctx).Error("Failed to record login", zap.Error(err))
	}

	logger.L(ctx).Info("User logged in",
		zap.String("account_id", account.ID.String()),
		zap.String("role", string(profile.Role())),
	)
	return result, nil
}

// Refresh exchanges a refresh token for a new pair. The old refresh token is
// revoked so it cannot be replayed.
func (s *AuthService) Refresh(ctx context.Context, input RefreshInput) (*TokenResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "identity", "refresh")
	defer span.End()

	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		logger.L(ctx).Warn("Refresh token validation failed", zap.Error(err))
		return nil, tokenError(err)
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, tokenError(auth.ErrTokenBlacklisted)
	}

	principal := claims.Principal()
	account, err := s.accounts.FindByID(ctx, principal.AccountID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, tokenError(auth.ErrInvalidClaims)
		}
		return nil, err
	}
	if !account.Active {
		return nil, errAccountInactive
	}
	profile, err := s.profiles.FindByUserID(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	result, err := s.issueTokens(account, profile)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Token refreshed", zap.String("account_id", account.ID.String()))
	return result, nil
}

// Logout revokes the caller's access token and, when given, its refresh token
func (s *AuthService) Logout(ctx context.Context, principal identity.Principal, input LogoutInput) error {
	if principal.IsAnonymous() {
		return shared.ErrUnauthorized
	}

	if err := s.blacklist.Revoke(ctx, principal.TokenID, time.Until(principal.ExpiresAt)); err != nil {
		return err
	}

	if input.RefreshToken != "" {
		claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
		if err == nil && claims.AccountID == principal.AccountID.String() {
			if err := s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
				return err
			}
		}
	}

	logger.L(ctx).Info("User logged out", zap.String("account_id", principal.AccountID.String()))
	return nil
}

// BootstrapAdmin seeds an administrator. An existing account with the same
// email is promoted instead of recreated.
func (s *AuthService) BootstrapAdmin(ctx context.Context, input RegisterInput) (*ProfileResponse, error) {
	account, err := s.accounts.FindByEmail(ctx, identity.NormalizeEmail(input.Email))
	switch {
	case err == nil:
		profile, err := s.profiles.FindByUserID(ctx, account.ID)
		if err != nil {
			return nil, err
		}
		profile.SetAdmin(true)
		if err := s.profiles.Update(ctx, profile); err != nil {
			return nil, err
		}
		event.PublishDomainEvents(ctx, s.publisher, profile)
		logger.L(ctx).Info("Existing account promoted to admin", zap.String("account_id", account.ID.String()))
		resp := ToProfileResponse(profile)
		resp.Email = account.Email
		return &resp, nil
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	account, err = identity.NewAccount(input.Email, input.Password)
	if err != nil {
		return nil, err
	}
	profile, err := identity.NewProfileWithContact(account.ID, input.FullName, input.Phone, input.Address)
	if err != nil {
		return nil, err
	}
	profile.IsAdmin = true

	err = s.registration.Execute(ctx, func(accounts identity.AccountRepository, profiles identity.ProfileRepository) error {
		if err := accounts.Create(ctx, account); err != nil {
			return err
		}
		return profiles.Create(ctx, profile)
	})
	if err != nil {
		return nil, err
	}

	event.PublishDomainEvents(ctx, s.publisher, profile)
	logger.L(ctx).Info("Admin account created", zap.String("account_id", account.ID.String()))
	resp := ToProfileResponse(profile)
	resp.Email = account.Email
	return &resp, nil
}

func (s *AuthService) issueTokens(account *identity.Account, profile *identity.Profile) (*TokenResult, error) {
	pair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		AccountID: account.ID,
		ProfileID: profile.ID,
		Role:      profile.Role(),
	})
	if err != nil {
		return nil, err
	}

	resp := ToProfileResponse(profile)
	resp.Email = account.Email
	return &TokenResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		Profile:               resp,
	}, nil
}

// tokenError maps JWT validation errors to domain errors
func tokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError(CodeTokenExpired, "Refresh token has expired")
	case errors.Is(err, auth.ErrTokenBlacklisted):
		return shared.NewDomainError(CodeTokenRevoked, "Refresh token has been revoked")
	default:
		return shared.NewDomainError(CodeTokenInvalid, "Invalid refresh token")
	}
}
