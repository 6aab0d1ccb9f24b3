package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ExpectedFeeFilter defines filtering options for expected-fee queries
type ExpectedFeeFilter struct {
	shared.Filter
	TermID         *uuid.UUID   // Filter by term
	ClassID        *uuid.UUID   // Filter by class scope
	StudentID      *uuid.UUID   // Filter by per-student lines
	Category       *FeeCategory // Filter by category
	IsOptional     *bool        // Filter by optional flag
	IsCarryForward *bool        // Filter only carried-forward lines
	Active         *bool        // Filter by active flag
}

// ExpectedFeeRepository defines the interface for expected-fee persistence
type ExpectedFeeRepository interface {
	// FindByIDForTenant finds an expected fee by ID for a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ExpectedFee, error)

	// FindByTerm finds all active fee lines applicable within a term.
	// Includes unscoped, class-scoped and per-student lines.
	FindByTerm(ctx context.Context, tenantID, termID uuid.UUID) ([]ExpectedFee, error)

	// FindAllForTenant finds expected fees for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ExpectedFeeFilter) ([]ExpectedFee, error)

	// FindCarryForward finds carry-forward lines in toTerm that originate
	// from fromTerm, optionally narrowed to one student
	FindCarryForward(ctx context.Context, tenantID, fromTermID, toTermID uuid.UUID, studentID *uuid.UUID) ([]ExpectedFee, error)

	// Save creates or updates an expected fee
	Save(ctx context.Context, fee *ExpectedFee) error

	// SaveAll persists a batch of expected fees in one call
	SaveAll(ctx context.Context, fees []*ExpectedFee) error

	// DeleteForTenant hard deletes an expected fee, used only when
	// reversing system-generated carry-forward lines
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// PaymentFilter defines filtering options for payment queries
type PaymentFilter struct {
	shared.Filter
	StudentID        *uuid.UUID     // Filter by student
	TermID           *uuid.UUID     // Filter by collection term
	Status           *PaymentStatus // Filter by status
	FromDate         *time.Time     // Filter by payment date range start
	ToDate           *time.Time     // Filter by payment date range end
	IsFullyAllocated *bool          // Filter by allocation completeness
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByIDForTenant finds a payment by ID for a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)

	// FindByPaymentNumber finds by payment number for a tenant
	FindByPaymentNumber(ctx context.Context, tenantID uuid.UUID, paymentNumber string) (*Payment, error)

	// FindAllForTenant finds payments for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) ([]Payment, error)

	// FindByStudent finds a student's payments
	FindByStudent(ctx context.Context, tenantID, studentID uuid.UUID, filter PaymentFilter) ([]Payment, error)

	// Save creates or updates a payment
	Save(ctx context.Context, payment *Payment) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, payment *Payment) error

	// SumCapturedByStudentAndTerm sums completed captures by collection
	// term, used for reconciliation reports. The "paid into a term"
	// figure comes from PaymentAllocationRepository instead.
	SumCapturedByStudentAndTerm(ctx context.Context, tenantID, studentID, termID uuid.UUID) (decimal.Decimal, error)

	// GeneratePaymentNumber generates a unique payment number for a tenant
	GeneratePaymentNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// PaymentAllocationFilter defines filtering options for allocation queries
type PaymentAllocationFilter struct {
	shared.Filter
	PaymentID *uuid.UUID        // Filter by payment
	StudentID *uuid.UUID        // Filter by student
	TermID    *uuid.UUID        // Filter by applied term
	Reason    *AllocationReason // Filter by reason
}

// PaymentAllocationRepository defines the interface for allocation persistence
type PaymentAllocationRepository interface {
	// FindByPayment finds every allocation row for a payment
	FindByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) ([]PaymentAllocation, error)

	// FindAllForTenant finds allocations for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentAllocationFilter) ([]PaymentAllocation, error)

	// Save creates an allocation row
	Save(ctx context.Context, allocation *PaymentAllocation) error

	// SaveAll persists a batch of allocation rows in one call
	SaveAll(ctx context.Context, allocations []*PaymentAllocation) error

	// SumByPayment sums allocated amounts across a payment's rows
	SumByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (decimal.Decimal, error)

	// SumByStudentAndTerm sums a student's allocations into a term. This
	// is the "paid" figure for fee status.
	SumByStudentAndTerm(ctx context.Context, tenantID, studentID, termID uuid.UUID) (decimal.Decimal, error)

	// SumByTerm sums all allocations into a term across students
	SumByTerm(ctx context.Context, tenantID, termID uuid.UUID) (decimal.Decimal, error)
}

// CreditLedgerFilter defines filtering options for credit ledger queries
type CreditLedgerFilter struct {
	shared.Filter
	StudentID *uuid.UUID    // Filter by student
	TermID    *uuid.UUID    // Filter by term of origin
	Status    *CreditStatus // Filter by status
}

// CreditLedgerRepository defines the interface for credit ledger persistence
type CreditLedgerRepository interface {
	// FindByIDForTenant finds a ledger entry by ID for a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CreditLedgerEntry, error)

	// FindActiveByStudent finds a student's consumable entries, oldest first
	FindActiveByStudent(ctx context.Context, tenantID, studentID uuid.UUID) ([]CreditLedgerEntry, error)

	// FindAllForTenant finds ledger entries for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter CreditLedgerFilter) ([]CreditLedgerEntry, error)

	// Save creates or updates a ledger entry
	Save(ctx context.Context, entry *CreditLedgerEntry) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, entry *CreditLedgerEntry) error

	// SumRemainingByStudent sums remaining balances across a student's
	// active entries, irrespective of originating term
	SumRemainingByStudent(ctx context.Context, tenantID, studentID uuid.UUID) (decimal.Decimal, error)
}

// FeeSnapshotFilter defines filtering options for snapshot queries
type FeeSnapshotFilter struct {
	shared.Filter
	TermID    *uuid.UUID // Filter by term
	StudentID *uuid.UUID // Filter by student
	Status    *FeeStatus // Filter by status
}

// FeeSnapshotRepository defines the interface for historical snapshot persistence
type FeeSnapshotRepository interface {
	// FindByStudentAndTerm finds the snapshot for a (student, term) pair
	FindByStudentAndTerm(ctx context.Context, tenantID, studentID, termID uuid.UUID) (*StudentFeeSnapshot, error)

	// FindByTerm finds every snapshot captured for a term
	FindByTerm(ctx context.Context, tenantID, termID uuid.UUID, filter FeeSnapshotFilter) ([]StudentFeeSnapshot, error)

	// SaveAll persists a batch of snapshots, replacing any prior snapshot
	// for the same (student, term)
	SaveAll(ctx context.Context, snapshots []*StudentFeeSnapshot) error
}
