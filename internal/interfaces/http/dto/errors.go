package dto

import (
	"net/http"
	"strings"

	"github.com/aquaportal/backend/internal/domain/shared"
)

// Transport-level error codes. Domain errors keep their own codes.
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeValidation is used when request binding fails
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "RATE_LIMIT_EXCEEDED"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	// ErrCodeServiceUnavailable is used when a dependency is down
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Authentication codes raised by the token middleware
const (
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "TOKEN_INVALID"
	ErrCodeTokenRevoked = "TOKEN_REVOKED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeRateLimited:        http.StatusTooManyRequests,
	ErrCodeRequestTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,

	shared.CodeNotFound:            http.StatusNotFound,
	shared.CodeAlreadyExists:       http.StatusConflict,
	shared.CodeInvalidInput:        http.StatusBadRequest,
	shared.CodeInvalidState:        http.StatusUnprocessableEntity,
	shared.CodeUnauthorized:        http.StatusUnauthorized,
	shared.CodeForbidden:           http.StatusForbidden,
	shared.CodeConcurrencyConflict: http.StatusConflict,
	shared.CodeDuplicateRequest:    http.StatusConflict,
	shared.CodeNegativeConsumption: http.StatusUnprocessableEntity,
	shared.CodeInvalidMethod:       http.StatusBadRequest,
	shared.CodeInvalidStatus:       http.StatusBadRequest,
	shared.CodeInvalidPriority:     http.StatusBadRequest,

	"INVALID_CREDENTIALS":  http.StatusUnauthorized,
	"ACCOUNT_INACTIVE":     http.StatusForbidden,
	"ATTACHMENT_TOO_LARGE": http.StatusRequestEntityTooLarge,
	"PASSWORD_HASH_ERROR":  http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unmapped INVALID_* codes are field validation failures and map to 400;
// any other unmapped code is a business rule violation and maps to 422.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}
