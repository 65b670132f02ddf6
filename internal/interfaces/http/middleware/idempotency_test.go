package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aquaportal/backend/internal/domain/identity"
	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/aquaportal/backend/internal/infrastructure/cache"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

type idempotencyHarness struct {
	router *gin.Engine
	mr     *miniredis.Miniredis
	calls  int
	status int
	tokens map[identity.Role]string
}

func newIdempotencyHarness(t *testing.T) *idempotencyHarness {
	t.Helper()
	h := &idempotencyHarness{mr: miniredis.RunT(t), status: http.StatusCreated}
	client := redis.NewClient(&redis.Options{Addr: h.mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := newTestJWTService(15 * time.Minute)
	first, _ := issue(t, svc, identity.RoleCustomer)
	second, _ := issue(t, svc, identity.RoleAdmin)
	h.tokens = map[identity.Role]string{identity.RoleCustomer: first.AccessToken, identity.RoleAdmin: second.AccessToken}

	h.router = gin.New()
	h.router.Use(RequestID())
	h.router.POST("/bills/:id/payments",
		JWTAuth(JWTMiddlewareConfig{JWTService: svc}),
		Idempotency(cache.NewRedisRequestClaimer(client, ""), time.Hour),
		func(c *gin.Context) {
			h.calls++
			c.Status(h.status)
		})
	return h
}

func (h *idempotencyHarness) post(role identity.Role, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/bills/42/payments", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+h.tokens[role])
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplayIsRejected(t *testing.T) {
	h := newIdempotencyHarness(t)

	assert.Equal(t, http.StatusCreated, h.post(identity.RoleCustomer, "pay-1").Code)
	w := h.post(identity.RoleCustomer, "pay-1")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), shared.CodeDuplicateRequest)
	assert.Equal(t, 1, h.calls)

	// Keys are per account
	assert.Equal(t, http.StatusCreated, h.post(identity.RoleAdmin, "pay-1").Code)
	assert.Equal(t, 2, h.calls)
}

func TestIdempotency_KeyExpires(t *testing.T) {
	h := newIdempotencyHarness(t)

	assert.Equal(t, http.StatusCreated, h.post(identity.RoleCustomer, "pay-2").Code)
	h.mr.FastForward(time.Hour + time.Second)
	assert.Equal(t, http.StatusCreated, h.post(identity.RoleCustomer, "pay-2").Code)
}

func TestIdempotency_FailedRequestReleasesKey(t *testing.T) {
	h := newIdempotencyHarness(t)

	h.status = http.StatusUnprocessableEntity
	assert.Equal(t, http.StatusUnprocessableEntity, h.post(identity.RoleCustomer, "pay-3").Code)

	h.status = http.StatusCreated
	assert.Equal(t, http.StatusCreated, h.post(identity.RoleCustomer, "pay-3").Code)
	assert.Equal(t, 2, h.calls)
}

func TestIdempotency_WithoutHeader(t *testing.T) {
	h := newIdempotencyHarness(t)
	h.post(identity.RoleCustomer, "")
	h.post(identity.RoleCustomer, "")
	assert.Equal(t, 2, h.calls)
}

func TestIdempotency_Rejections(t *testing.T) {
	h := newIdempotencyHarness(t)

	w := h.post(identity.RoleCustomer, strings.Repeat("k", MaxIdempotencyKeyLength+1))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	h.mr.Close()
	w = h.post(identity.RoleCustomer, "pay-4")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, 0, h.calls)
}
