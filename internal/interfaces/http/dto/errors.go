package dto

import (
	"errors"
	"net/http"

	"github.com/fixdesk/backend/internal/domain/shared"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Domain error codes, one per shared.ErrorKind
const (
	// ErrCodeNotFound is used when a referenced entity does not exist
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeValidation is used when input is rejected
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeInvalidState is used when an operation is invalid for the current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeConflict is used for uniqueness and concurrency clashes
	ErrCodeConflict = "ERR_CONFLICT"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeConflict:     http.StatusConflict,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// kindErrorCodes maps domain error kinds to their API error code
var kindErrorCodes = map[shared.ErrorKind]string{
	shared.KindNotFound:     ErrCodeNotFound,
	shared.KindValidation:   ErrCodeValidation,
	shared.KindInvalidState: ErrCodeInvalidState,
	shared.KindConflict:     ErrCodeConflict,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// CodeForKind returns the API error code of a domain error kind
func CodeForKind(kind shared.ErrorKind) string {
	if code, ok := kindErrorCodes[kind]; ok {
		return code
	}
	return ErrCodeInternal
}

// ErrorInfoFor classifies err. Domain errors keep their message and carry
// their own code as Reason; anything else becomes an opaque internal error.
func ErrorInfoFor(err error) (int, ErrorInfo) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := CodeForKind(domainErr.Kind)
		return GetHTTPStatus(code), ErrorInfo{
			Code:    code,
			Reason:  domainErr.Code,
			Message: domainErr.Message,
		}
	}
	return http.StatusInternalServerError, ErrorInfo{
		Code:    ErrCodeInternal,
		Message: "An unexpected error occurred",
	}
}
