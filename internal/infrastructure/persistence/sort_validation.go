package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort direction to ASC or DESC.
// Defaults to ASC when the input is empty or invalid.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "desc") {
		return "DESC"
	}
	return "ASC"
}

// ValidateSortField checks the sort field against a whitelist.
// Returns defaultField when the input is empty or not whitelisted, so
// user-supplied values never reach the ORDER BY clause unchecked.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// TermSortFields contains allowed sort fields for terms
var TermSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"name":              true,
	"term_number":       true,
	"start_date":        true,
	"end_date":          true,
	"period_start_date": true,
}

// StudentSortFields contains allowed sort fields for students
var StudentSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"admission_number": true,
	"first_name":       true,
	"last_name":        true,
	"is_active":        true,
}

// AcademicRecordSortFields contains allowed sort fields for academic records
var AcademicRecordSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"status":     true,
}

// PaymentSortFields contains allowed sort fields for payments
var PaymentSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"payment_number": true,
	"payment_date":   true,
	"amount":         true,
	"status":         true,
}

// ExpectedFeeSortFields contains allowed sort fields for expected fees
var ExpectedFeeSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"category":   true,
	"amount":     true,
	"due_date":   true,
}

// AllocationSortFields contains allowed sort fields for payment allocations
var AllocationSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"amount":     true,
	"reason":     true,
}

// CreditSortFields contains allowed sort fields for credit ledger entries
var CreditSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"amount":           true,
	"remaining_amount": true,
	"status":           true,
}
