package handler

import (
	"net/http"
	"testing"

	identityapp "github.com/aquaportal/backend/internal/application/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Register(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":     "Jane@Example.com",
		"password":  "s3cretpass",
		"full_name": "Jane Wanjiku",
		"phone":     "+254700000001",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[identityapp.RegisterResult](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "jane@example.com", resp.Data.Email)
	assert.Equal(t, "Jane Wanjiku", resp.Data.Profile.FullName)
	assert.False(t, resp.Data.Profile.IsAdmin)
	assert.Nil(t, resp.Data.Profile.MeterNumber)

	t.Run("duplicate email", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"email":     "jane@example.com",
			"password":  "anotherpass",
			"full_name": "Someone Else",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "ALREADY_EXISTS", errorCode(t, w))
	})

	t.Run("validation errors list fields", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"email":    "not-an-email",
			"password": "short",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode[any](t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

		fields := make([]string, 0, len(resp.Error.Details))
		for _, d := range resp.Error.Details {
			fields = append(fields, d.Field)
		}
		assert.ElementsMatch(t, []string{"email", "password", "full_name"}, fields)
	})
}

func TestAuthHandler_LoginRefreshLogout(t *testing.T) {
	s := newTestServer(t)
	s.user("amina@example.com", false, "MTR-100")

	w := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "amina@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode[identityapp.TokenResult](t, w).Data
	assert.NotEmpty(t, login.AccessToken)
	assert.NotEmpty(t, login.RefreshToken)
	assert.Equal(t, "Bearer", login.TokenType)

	w = s.do(http.MethodGet, "/api/v1/profile", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": login.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	refreshed := decode[identityapp.TokenResult](t, w).Data
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The exchanged refresh token cannot be replayed
	w = s.do(http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": login.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/logout", refreshed.AccessToken, map[string]string{"refresh_token": refreshed.RefreshToken})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/profile", refreshed.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_REVOKED", errorCode(t, w))

	w = s.do(http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": refreshed.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_LoginRejectsBadCredentials(t *testing.T) {
	s := newTestServer(t)
	s.user("amina@example.com", false, "")

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "amina@example.com", "wrong-password"},
		{"unknown email", "nobody@example.com", "password123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
				"email":    tt.email,
				"password": tt.password,
			})
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, w))
		})
	}
}

func TestAuthHandler_LogoutWithoutBody(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user("amina@example.com", false, "")

	w := s.do(http.MethodPost, "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
}
