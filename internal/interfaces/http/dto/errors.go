package dto

import "net/http"

// Error codes surfaced by the API. Domain errors carry these codes
// unchanged; the map below decides the HTTP status.
const (
	ErrCodeInternal            = "INTERNAL_ERROR"
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken        = "INVALID_TOKEN"
	ErrCodeTokenExpired        = "TOKEN_EXPIRED"
	ErrCodeTokenRevoked        = "TOKEN_REVOKED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeAccountDeactivated  = "ACCOUNT_DEACTIVATED"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeAlreadyExists       = "ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	ErrCodeInvalidState        = "INVALID_STATE"
	ErrCodeInvalidOperation    = "INVALID_OPERATION"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:       http.StatusInternalServerError,
	"PASSWORD_HASH_ERROR": http.StatusInternalServerError,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeInvalidToken:       http.StatusUnauthorized,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,

	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeAccountDeactivated: http.StatusForbidden,

	ErrCodeNotFound: http.StatusNotFound,

	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState:     http.StatusUnprocessableEntity,
	ErrCodeInvalidOperation: http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status for an error code, defaulting to 500
// for codes it does not recognize
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
