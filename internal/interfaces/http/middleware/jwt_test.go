package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aquaportal/backend/internal/domain/identity"
	"github.com/aquaportal/backend/internal/infrastructure/auth"
	"github.com/aquaportal/backend/internal/infrastructure/config"
	"github.com/aquaportal/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService(access time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-access-secret-that-is-long-enough",
		RefreshSecret:          "test-refresh-secret-that-is-long-enough",
		AccessTokenExpiration:  access,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "water-portal",
	})
}

func issue(t *testing.T, svc *auth.JWTService, role identity.Role) (*auth.TokenPair, auth.GenerateTokenInput) {
	t.Helper()
	input := auth.GenerateTokenInput{AccountID: uuid.New(), ProfileID: uuid.New(), Role: role}
	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)
	return pair, input
}

type stubBlacklist struct {
	revoked map[string]bool
	err     error
}

func (b stubBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	return b.revoked[jti], b.err
}

func authRouter(cfg JWTMiddlewareConfig, extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), JWTAuth(cfg))
	handlers := append(extra, func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"profile_id": p.ProfileID.String(), "role": string(p.Role)})
	})
	router.GET("/profile", handlers...)
	return router
}

func call(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	if token != "" {
		req.Header.Set(AuthHeaderKey, token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestJWTAuth_ValidToken(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	pair, input := issue(t, svc, identity.RoleCustomer)

	w := call(authRouter(JWTMiddlewareConfig{JWTService: svc}), BearerPrefix+pair.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), input.ProfileID.String())
	assert.Contains(t, w.Body.String(), `"role":"customer"`)
}

func TestJWTAuth_Rejections(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	pair, _ := issue(t, svc, identity.RoleCustomer)
	expired, _ := issue(t, newTestJWTService(-time.Minute), identity.RoleCustomer)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", dto.ErrCodeTokenInvalid},
		{"wrong scheme", "Basic abc", dto.ErrCodeTokenInvalid},
		{"empty token", BearerPrefix, dto.ErrCodeTokenInvalid},
		{"garbage", BearerPrefix + "not.a.jwt", dto.ErrCodeTokenInvalid},
		{"refresh token as access", BearerPrefix + pair.RefreshToken, dto.ErrCodeTokenInvalid},
		{"expired", BearerPrefix + expired.AccessToken, dto.ErrCodeTokenExpired},
	}
	router := authRouter(JWTMiddlewareConfig{JWTService: svc})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(router, tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestJWTAuth_Blacklist(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	pair, _ := issue(t, svc, identity.RoleCustomer)
	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	t.Run("revoked token is refused", func(t *testing.T) {
		router := authRouter(JWTMiddlewareConfig{
			JWTService: svc,
			Blacklist:  stubBlacklist{revoked: map[string]bool{claims.ID: true}},
		})
		w := call(router, BearerPrefix+pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTokenRevoked, errorCode(t, w))
	})

	t.Run("blacklist outage fails open", func(t *testing.T) {
		router := authRouter(JWTMiddlewareConfig{
			JWTService: svc,
			Blacklist:  stubBlacklist{err: errors.New("redis down")},
		})
		w := call(router, BearerPrefix+pair.AccessToken)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	router := authRouter(JWTMiddlewareConfig{JWTService: svc}, RequireAdmin())

	customer, _ := issue(t, svc, identity.RoleCustomer)
	w := call(router, BearerPrefix+customer.AccessToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, w))

	admin, _ := issue(t, svc, identity.RoleAdmin)
	w = call(router, BearerPrefix+admin.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)
}
