package persistence

import (
	"context"

	appbilling "github.com/schoolerp/backend/internal/application/billing"
	"github.com/schoolerp/backend/internal/domain/billing"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations: allocation
// rows, payment summaries, credit entries and carry-forward fee lines commit
// or roll back together.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appbilling.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to the billing repositories
// within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// PaymentRepo returns the payment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PaymentRepo() billing.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// AllocationRepo returns the allocation repository scoped to the current transaction.
func (r *gormTransactionalRepositories) AllocationRepo() billing.PaymentAllocationRepository {
	return NewGormPaymentAllocationRepository(r.tx)
}

// CreditRepo returns the credit ledger repository scoped to the current transaction.
func (r *gormTransactionalRepositories) CreditRepo() billing.CreditLedgerRepository {
	return NewGormCreditLedgerRepository(r.tx)
}

// FeeRepo returns the expected-fee repository scoped to the current transaction.
func (r *gormTransactionalRepositories) FeeRepo() billing.ExpectedFeeRepository {
	return NewGormExpectedFeeRepository(r.tx)
}

// SnapshotRepo returns the fee snapshot repository scoped to the current transaction.
func (r *gormTransactionalRepositories) SnapshotRepo() billing.FeeSnapshotRepository {
	return NewGormFeeSnapshotRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appbilling.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appbilling.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
