package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aquaportal/backend/internal/domain/identity"
	"github.com/aquaportal/backend/internal/infrastructure/auth"
	"github.com/aquaportal/backend/internal/infrastructure/logger"
	"github.com/aquaportal/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Authentication context keys and header parts
const (
	PrincipalKey  = "principal"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// TokenRevocationChecker reports whether a token ID was revoked by logout
type TokenRevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// Blacklist is optional; when set, revoked tokens are refused
	Blacklist TokenRevocationChecker
	// Logger for authentication failures
	Logger *zap.Logger
}

// JWTAuth validates the bearer access token and stores the caller's
// Principal in the gin context. Handlers read it with GetPrincipal.
func JWTAuth(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Missing token")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			abortUnauthorized(c, log, err, "Token validation failed")
			return
		}

		ctx := c.Request.Context()
		if cfg.Blacklist != nil && claims.ID != "" {
			revoked, err := cfg.Blacklist.IsRevoked(ctx, claims.ID)
			switch {
			case err != nil:
				// Fail open while the blacklist store is unreachable
				logger.L(ctx).Error("Failed to check token blacklist", zap.String("jti", claims.ID), zap.Error(err))
			case revoked:
				abortUnauthorized(c, log, auth.ErrTokenBlacklisted, "Token has been revoked")
				return
			}
		}

		principal := claims.Principal()
		c.Set(PrincipalKey, principal)
		c.Request = c.Request.WithContext(logger.WithCaller(ctx, principal.AccountID.String(), string(principal.Role)))
		annotateSpan(c, principal)

		c.Next()
	}
}

// RequireAdmin refuses non-admin callers before the handler runs. The
// application policy checks again; this keeps admin routes from reaching
// request binding for customers.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				"UNAUTHORIZED", "Authentication required", GetRequestID(c)))
			return
		}
		if !principal.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				"FORBIDDEN", "Administrator access required", GetRequestID(c)))
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the authenticated caller
func GetPrincipal(c *gin.Context) (identity.Principal, bool) {
	v, exists := c.Get(PrincipalKey)
	if !exists {
		return identity.Principal{}, false
	}
	p, ok := v.(identity.Principal)
	return p, ok
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error, message string) {
	log.Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", GetRequestID(c)),
	)

	code, msg := "UNAUTHORIZED", "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, msg = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		code, msg = dto.ErrCodeTokenRevoked, "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidTokenType),
		errors.Is(err, auth.ErrInvalidClaims), errors.Is(err, auth.ErrTokenNotYetValid):
		code, msg = dto.ErrCodeTokenInvalid, "Invalid token"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, msg, GetRequestID(c)))
}
