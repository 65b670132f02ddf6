package middleware

import (
	"net/http"
	"time"

	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/aquaportal/backend/internal/infrastructure/logger"
	"github.com/aquaportal/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader is the client-chosen key for a retry-safe request
const IdempotencyKeyHeader = "Idempotency-Key"

// MaxIdempotencyKeyLength bounds the header value
const MaxIdempotencyKeyLength = 128

// DefaultIdempotencyTTL is how long a claimed key blocks replays
const DefaultIdempotencyTTL = 24 * time.Hour

// Idempotency claims the Idempotency-Key header before the handler runs.
// A replay of a claimed key is answered with 409 DUPLICATE_REQUEST. Keys
// are scoped per account. A request that ends in an error response
// releases its key so the client may retry. Requests without the header
// pass through.
func Idempotency(claimer shared.RequestClaimer, ttl time.Duration) gin.HandlerFunc {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > MaxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "Idempotency-Key is too long", GetRequestID(c)))
			return
		}

		scope := "anonymous"
		if p, ok := GetPrincipal(c); ok {
			scope = p.AccountID.String()
		}
		claimKey := scope + ":" + c.FullPath() + ":" + key

		ctx := c.Request.Context()
		claimed, err := claimer.Claim(ctx, claimKey, ttl)
		if err != nil {
			// Fail closed while the claim store is unreachable
			logger.L(ctx).Error("Idempotency store unavailable", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeServiceUnavailable, "Please retry shortly", GetRequestID(c)))
			return
		}
		if !claimed {
			logger.L(ctx).Info("Duplicate request rejected", zap.String("idempotency_key", key))
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				shared.CodeDuplicateRequest, shared.ErrDuplicateRequest.Message, GetRequestID(c)))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := claimer.Release(ctx, claimKey); err != nil {
				logger.L(ctx).Warn("Failed to release idempotency key", zap.String("idempotency_key", key), zap.Error(err))
			}
		}
	}
}
