package identity

import "github.com/aquaportal/backend/internal/domain/shared"

// Error codes raised by the identity services
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountInactive    = "ACCOUNT_INACTIVE"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeTokenInvalid       = "TOKEN_INVALID"
	CodeTokenRevoked       = "TOKEN_REVOKED"
)

var (
	errInvalidCredentials = shared.NewDomainError(CodeInvalidCredentials, "Invalid email or password")
	errAccountInactive    = shared.NewDomainError(CodeAccountInactive, "Account has been deactivated")
	errEmailTaken         = shared.NewDomainError(shared.CodeAlreadyExists, "Email is already registered")
	errMeterTaken         = shared.NewDomainError(shared.CodeAlreadyExists, "Meter number is already assigned to another customer")
)
