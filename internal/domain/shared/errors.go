package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound             = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists        = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidArgument      = NewDomainError("INVALID_ARGUMENT", "Invalid argument provided")
	ErrConcurrencyConflict  = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrStateConflict        = NewDomainError("STATE_CONFLICT", "Operation not allowed in current state")
	ErrOverAllocation       = NewDomainError("OVER_ALLOCATION", "Requested allocations exceed the payment amount")
	ErrEligibilityViolation = NewDomainError("ELIGIBILITY_VIOLATION", "Term is outside the student's eligibility window")
	ErrInsufficientCredit   = NewDomainError("INSUFFICIENT_CREDIT", "Consume amount exceeds remaining credit balance")
)
