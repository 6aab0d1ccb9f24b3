package dto

import (
	"net/http"
	"strings"
)

// Error code constants, format ERR_<CATEGORY>_<DESCRIPTION>. Domain
// errors carry their own codes (TERM_NOT_FOUND, OVER_ALLOCATION, ...)
// which NormalizeErrorCode folds into these API-level codes.

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	// ErrCodeValidation is the base code for request validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeOverAllocation is used when allocations would exceed a payment's amount
	ErrCodeOverAllocation = "ERR_OVER_ALLOCATION"
	// ErrCodeEligibilityViolation is used when a term is outside a student's billing window
	ErrCodeEligibilityViolation = "ERR_ELIGIBILITY_VIOLATION"
	// ErrCodeInsufficientCredit is used when a consume exceeds usable credit
	ErrCodeInsufficientCredit = "ERR_INSUFFICIENT_CREDIT"
)

// Tenancy error codes
const (
	// ErrCodeTenantRequired is used when the tenant header is missing or malformed
	ErrCodeTenantRequired = "ERR_TENANT_REQUIRED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState:         http.StatusUnprocessableEntity,
	ErrCodeOverAllocation:       http.StatusUnprocessableEntity,
	ErrCodeEligibilityViolation: http.StatusUnprocessableEntity,
	ErrCodeInsufficientCredit:   http.StatusUnprocessableEntity,

	ErrCodeTenantRequired: http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodeMapping maps domain error codes to API-level codes
var domainErrorCodeMapping = map[string]string{
	"NOT_FOUND":              ErrCodeNotFound,
	"ALREADY_EXISTS":         ErrCodeAlreadyExists,
	"STATE_CONFLICT":         ErrCodeInvalidState,
	"OPTIMISTIC_LOCK_FAILED": ErrCodeConcurrencyConflict,
	"CONCURRENCY_CONFLICT":   ErrCodeConcurrencyConflict,
	"OVER_ALLOCATION":        ErrCodeOverAllocation,
	"ELIGIBILITY_VIOLATION":  ErrCodeEligibilityViolation,
	"STUDENT_NOT_ENROLLED":   ErrCodeEligibilityViolation,
	"INSUFFICIENT_CREDIT":    ErrCodeInsufficientCredit,
	"INTERNAL_ERROR":         ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the API-level
// format. INVALID_* codes are argument errors and *_NOT_FOUND codes are
// missing resources; anything unrecognized passes through unchanged so
// clients still see the original code.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainErrorCodeMapping[code]; ok {
		return apiCode
	}
	if strings.HasPrefix(code, "INVALID_") {
		return ErrCodeInvalidInput
	}
	if strings.HasSuffix(code, "_NOT_FOUND") {
		return ErrCodeNotFound
	}
	return code
}
