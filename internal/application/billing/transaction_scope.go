package billing

import (
	"context"

	"github.com/schoolerp/backend/internal/domain/billing"
)

// TransactionScope provides transactional access to billing repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically. Allocation, credit banking and carry-forward all write
// through this scope so that a failure mid-operation leaves no trace.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the billing repositories
// within a transaction. All repositories returned share the same
// underlying database transaction.
type TransactionalRepositories interface {
	// PaymentRepo returns the payment repository scoped to the current transaction
	PaymentRepo() billing.PaymentRepository
	// AllocationRepo returns the allocation repository scoped to the current transaction
	AllocationRepo() billing.PaymentAllocationRepository
	// CreditRepo returns the credit ledger repository scoped to the current transaction
	CreditRepo() billing.CreditLedgerRepository
	// FeeRepo returns the expected-fee repository scoped to the current transaction
	FeeRepo() billing.ExpectedFeeRepository
	// SnapshotRepo returns the fee snapshot repository scoped to the current transaction
	SnapshotRepo() billing.FeeSnapshotRepository
}

// NoOpTransactionScope runs the scoped function without a real database
// transaction. Used in tests.
type NoOpTransactionScope struct {
	paymentRepo  billing.PaymentRepository
	allocRepo    billing.PaymentAllocationRepository
	creditRepo   billing.CreditLedgerRepository
	feeRepo      billing.ExpectedFeeRepository
	snapshotRepo billing.FeeSnapshotRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	paymentRepo billing.PaymentRepository,
	allocRepo billing.PaymentAllocationRepository,
	creditRepo billing.CreditLedgerRepository,
	feeRepo billing.ExpectedFeeRepository,
	snapshotRepo billing.FeeSnapshotRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		paymentRepo:  paymentRepo,
		allocRepo:    allocRepo,
		creditRepo:   creditRepo,
		feeRepo:      feeRepo,
		snapshotRepo: snapshotRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// PaymentRepo returns the payment repository.
func (s *NoOpTransactionScope) PaymentRepo() billing.PaymentRepository {
	return s.paymentRepo
}

// AllocationRepo returns the allocation repository.
func (s *NoOpTransactionScope) AllocationRepo() billing.PaymentAllocationRepository {
	return s.allocRepo
}

// CreditRepo returns the credit ledger repository.
func (s *NoOpTransactionScope) CreditRepo() billing.CreditLedgerRepository {
	return s.creditRepo
}

// FeeRepo returns the expected-fee repository.
func (s *NoOpTransactionScope) FeeRepo() billing.ExpectedFeeRepository {
	return s.feeRepo
}

// SnapshotRepo returns the fee snapshot repository.
func (s *NoOpTransactionScope) SnapshotRepo() billing.FeeSnapshotRepository {
	return s.snapshotRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
