package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database with the billing and
// academic tables for repository tests.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE academic_periods (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			tenant_id TEXT NOT NULL,
			name TEXT NOT NULL,
			start_date DATETIME NOT NULL,
			end_date DATETIME NOT NULL,
			is_current INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE terms (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			tenant_id TEXT NOT NULL,
			academic_period_id TEXT NOT NULL,
			name TEXT NOT NULL,
			term_number INTEGER NOT NULL,
			start_date DATETIME NOT NULL,
			end_date DATETIME NOT NULL,
			period_start_date DATETIME NOT NULL,
			is_current INTEGER NOT NULL DEFAULT 0,
			is_completed INTEGER NOT NULL DEFAULT 0,
			completed_at DATETIME
		)`,
		`CREATE TABLE students (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			tenant_id TEXT NOT NULL,
			admission_number TEXT NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			class_id TEXT,
			enrollment_term_id TEXT,
			graduation_term_id TEXT,
			is_active INTEGER NOT NULL DEFAULT 1,
			UNIQUE(tenant_id, admission_number)
		)`,
		`CREATE TABLE student_academic_records (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			tenant_id TEXT NOT NULL,
			student_id TEXT NOT NULL,
			term_id TEXT NOT NULL,
			class_id TEXT,
			status TEXT NOT NULL,
			UNIQUE(tenant_id, student_id, term_id)
		)`,
		`CREATE TABLE expected_fees (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			tenant_id TEXT NOT NULL,
			term_id TEXT NOT NULL,
			class_id TEXT,
			student_id TEXT,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			amount NUMERIC NOT NULL,
			is_optional INTEGER NOT NULL DEFAULT 0,
			frequency TEXT NOT NULL,
			due_date DATETIME,
			is_carry_forward INTEGER NOT NULL DEFAULT 0,
			original_term_id TEXT,
			active INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE payments (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			tenant_id TEXT NOT NULL,
			payment_number TEXT NOT NULL,
			student_id TEXT NOT NULL,
			term_id TEXT NOT NULL,
			amount NUMERIC NOT NULL,
			status TEXT NOT NULL DEFAULT 'PENDING',
			payment_date DATETIME NOT NULL,
			method TEXT,
			reference TEXT,
			total_allocated NUMERIC NOT NULL,
			credited_amount NUMERIC NOT NULL,
			is_fully_allocated INTEGER NOT NULL DEFAULT 0,
			completed_at DATETIME,
			UNIQUE(tenant_id, payment_number)
		)`,
		`CREATE TABLE payment_allocations (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			tenant_id TEXT NOT NULL,
			payment_id TEXT NOT NULL,
			student_id TEXT NOT NULL,
			term_id TEXT NOT NULL,
			allocated_amount NUMERIC NOT NULL,
			reason TEXT NOT NULL,
			is_auto_allocation INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE credit_ledger_entries (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			tenant_id TEXT NOT NULL,
			student_id TEXT NOT NULL,
			term_id TEXT NOT NULL,
			source_payment_id TEXT,
			amount NUMERIC NOT NULL,
			remaining_amount NUMERIC NOT NULL,
			status TEXT NOT NULL DEFAULT 'ACTIVE',
			remark TEXT,
			applied_at DATETIME,
			refunded_at DATETIME
		)`,
		`CREATE TABLE student_fee_snapshots (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			tenant_id TEXT NOT NULL,
			student_id TEXT NOT NULL,
			term_id TEXT NOT NULL,
			expected_amount NUMERIC NOT NULL,
			paid_amount NUMERIC NOT NULL,
			outstanding_amount NUMERIC NOT NULL,
			overdue_amount NUMERIC NOT NULL,
			carry_forward_amount NUMERIC NOT NULL,
			status TEXT NOT NULL,
			captured_at DATETIME NOT NULL,
			UNIQUE(tenant_id, student_id, term_id)
		)`,
	}

	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return db
}
