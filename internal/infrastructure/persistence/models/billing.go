package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// ExpectedFeeModel is the persistence model for the ExpectedFee aggregate root.
type ExpectedFeeModel struct {
	TenantAggregateModel
	TermID         uuid.UUID            `gorm:"type:uuid;not null;index"`
	ClassID        *uuid.UUID           `gorm:"type:uuid;index"`
	StudentID      *uuid.UUID           `gorm:"type:uuid;index"`
	Name           string               `gorm:"type:varchar(200);not null"`
	Category       billing.FeeCategory  `gorm:"type:varchar(30);not null;index"`
	Amount         decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	IsOptional     bool                 `gorm:"not null;default:false"`
	Frequency      billing.FeeFrequency `gorm:"type:varchar(20);not null"`
	DueDate        *time.Time           `gorm:"index"`
	IsCarryForward bool                 `gorm:"not null;default:false;index"`
	OriginalTermID *uuid.UUID           `gorm:"type:uuid;index"`
	Active         bool                 `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (ExpectedFeeModel) TableName() string {
	return "expected_fees"
}

// ToDomain converts the persistence model to a domain ExpectedFee entity.
func (m *ExpectedFeeModel) ToDomain() *billing.ExpectedFee {
	return &billing.ExpectedFee{
		TenantAggregateRoot: m.tenantAggregateRoot(),
		TermID:              m.TermID,
		ClassID:             m.ClassID,
		StudentID:           m.StudentID,
		Name:                m.Name,
		Category:            m.Category,
		Amount:              m.Amount,
		IsOptional:          m.IsOptional,
		Frequency:           m.Frequency,
		DueDate:             m.DueDate,
		IsCarryForward:      m.IsCarryForward,
		OriginalTermID:      m.OriginalTermID,
		Active:              m.Active,
	}
}

// FromDomain populates the persistence model from a domain ExpectedFee entity.
func (m *ExpectedFeeModel) FromDomain(f *billing.ExpectedFee) {
	m.FromDomainTenantAggregateRoot(f.TenantAggregateRoot)
	m.TermID = f.TermID
	m.ClassID = f.ClassID
	m.StudentID = f.StudentID
	m.Name = f.Name
	m.Category = f.Category
	m.Amount = f.Amount
	m.IsOptional = f.IsOptional
	m.Frequency = f.Frequency
	m.DueDate = f.DueDate
	m.IsCarryForward = f.IsCarryForward
	m.OriginalTermID = f.OriginalTermID
	m.Active = f.Active
}

// ExpectedFeeModelFromDomain creates a new persistence model from a domain ExpectedFee.
func ExpectedFeeModelFromDomain(f *billing.ExpectedFee) *ExpectedFeeModel {
	m := &ExpectedFeeModel{}
	m.FromDomain(f)
	return m
}

// PaymentModel is the persistence model for the Payment aggregate root.
type PaymentModel struct {
	TenantAggregateModel
	PaymentNumber    string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_payment_tenant_number,priority:2"`
	StudentID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	TermID           uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount           decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Status           billing.PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PaymentDate      time.Time             `gorm:"not null;index"`
	Method           string                `gorm:"type:varchar(30)"`
	Reference        string                `gorm:"type:varchar(100)"`
	TotalAllocated   decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	CreditedAmount   decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	IsFullyAllocated bool                  `gorm:"not null;default:false;index"`
	CompletedAt      *time.Time
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		TenantAggregateRoot: m.tenantAggregateRoot(),
		PaymentNumber:       m.PaymentNumber,
		StudentID:           m.StudentID,
		TermID:              m.TermID,
		Amount:              m.Amount,
		Status:              m.Status,
		PaymentDate:         m.PaymentDate,
		Method:              m.Method,
		Reference:           m.Reference,
		TotalAllocated:      m.TotalAllocated,
		CreditedAmount:      m.CreditedAmount,
		IsFullyAllocated:    m.IsFullyAllocated,
		CompletedAt:         m.CompletedAt,
	}
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.PaymentNumber = p.PaymentNumber
	m.StudentID = p.StudentID
	m.TermID = p.TermID
	m.Amount = p.Amount
	m.Status = p.Status
	m.PaymentDate = p.PaymentDate
	m.Method = p.Method
	m.Reference = p.Reference
	m.TotalAllocated = p.TotalAllocated
	m.CreditedAmount = p.CreditedAmount
	m.IsFullyAllocated = p.IsFullyAllocated
	m.CompletedAt = p.CompletedAt
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// PaymentAllocationModel is the persistence model for allocation rows.
// Rows are insert-only; reversals create compensating payments instead.
type PaymentAllocationModel struct {
	TenantAggregateModel
	PaymentID        uuid.UUID                `gorm:"type:uuid;not null;index"`
	StudentID        uuid.UUID                `gorm:"type:uuid;not null;index:idx_allocation_student_term,priority:1"`
	TermID           uuid.UUID                `gorm:"type:uuid;not null;index:idx_allocation_student_term,priority:2"`
	AllocatedAmount  decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Reason           billing.AllocationReason `gorm:"type:varchar(30);not null;index"`
	IsAutoAllocation bool                     `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (PaymentAllocationModel) TableName() string {
	return "payment_allocations"
}

// ToDomain converts the persistence model to a domain PaymentAllocation entity.
func (m *PaymentAllocationModel) ToDomain() *billing.PaymentAllocation {
	return &billing.PaymentAllocation{
		TenantAggregateRoot: m.tenantAggregateRoot(),
		PaymentID:           m.PaymentID,
		StudentID:           m.StudentID,
		TermID:              m.TermID,
		AllocatedAmount:     m.AllocatedAmount,
		Reason:              m.Reason,
		IsAutoAllocation:    m.IsAutoAllocation,
	}
}

// FromDomain populates the persistence model from a domain PaymentAllocation entity.
func (m *PaymentAllocationModel) FromDomain(a *billing.PaymentAllocation) {
	m.FromDomainTenantAggregateRoot(a.TenantAggregateRoot)
	m.PaymentID = a.PaymentID
	m.StudentID = a.StudentID
	m.TermID = a.TermID
	m.AllocatedAmount = a.AllocatedAmount
	m.Reason = a.Reason
	m.IsAutoAllocation = a.IsAutoAllocation
}

// PaymentAllocationModelFromDomain creates a new persistence model from a domain allocation.
func PaymentAllocationModelFromDomain(a *billing.PaymentAllocation) *PaymentAllocationModel {
	m := &PaymentAllocationModel{}
	m.FromDomain(a)
	return m
}

// CreditLedgerEntryModel is the persistence model for the CreditLedgerEntry
// aggregate root.
type CreditLedgerEntryModel struct {
	TenantAggregateModel
	StudentID       uuid.UUID            `gorm:"type:uuid;not null;index"`
	TermID          uuid.UUID            `gorm:"type:uuid;not null;index"`
	SourcePaymentID *uuid.UUID           `gorm:"type:uuid;index"`
	Amount          decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	RemainingAmount decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Status          billing.CreditStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	Remark          string               `gorm:"type:varchar(500)"`
	AppliedAt       *time.Time
	RefundedAt      *time.Time
}

// TableName returns the table name for GORM
func (CreditLedgerEntryModel) TableName() string {
	return "credit_ledger_entries"
}

// ToDomain converts the persistence model to a domain CreditLedgerEntry entity.
func (m *CreditLedgerEntryModel) ToDomain() *billing.CreditLedgerEntry {
	return &billing.CreditLedgerEntry{
		TenantAggregateRoot: m.tenantAggregateRoot(),
		StudentID:           m.StudentID,
		TermID:              m.TermID,
		SourcePaymentID:     m.SourcePaymentID,
		Amount:              m.Amount,
		RemainingAmount:     m.RemainingAmount,
		Status:              m.Status,
		Remark:              m.Remark,
		AppliedAt:           m.AppliedAt,
		RefundedAt:          m.RefundedAt,
	}
}

// FromDomain populates the persistence model from a domain CreditLedgerEntry entity.
func (m *CreditLedgerEntryModel) FromDomain(e *billing.CreditLedgerEntry) {
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	m.StudentID = e.StudentID
	m.TermID = e.TermID
	m.SourcePaymentID = e.SourcePaymentID
	m.Amount = e.Amount
	m.RemainingAmount = e.RemainingAmount
	m.Status = e.Status
	m.Remark = e.Remark
	m.AppliedAt = e.AppliedAt
	m.RefundedAt = e.RefundedAt
}

// CreditLedgerEntryModelFromDomain creates a new persistence model from a domain entry.
func CreditLedgerEntryModelFromDomain(e *billing.CreditLedgerEntry) *CreditLedgerEntryModel {
	m := &CreditLedgerEntryModel{}
	m.FromDomain(e)
	return m
}

// StudentFeeSnapshotModel is the persistence model for frozen per-(student, term)
// fee positions written when a term closes.
type StudentFeeSnapshotModel struct {
	TenantAggregateModel
	StudentID          uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_snapshot_tenant_student_term,priority:2"`
	TermID             uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_snapshot_tenant_student_term,priority:3;index"`
	ExpectedAmount     decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	PaidAmount         decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	OutstandingAmount  decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	OverdueAmount      decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	CarryForwardAmount decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	Status             billing.FeeStatus `gorm:"type:varchar(20);not null;index"`
	CapturedAt         time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StudentFeeSnapshotModel) TableName() string {
	return "student_fee_snapshots"
}

// ToDomain converts the persistence model to a domain StudentFeeSnapshot entity.
func (m *StudentFeeSnapshotModel) ToDomain() *billing.StudentFeeSnapshot {
	return &billing.StudentFeeSnapshot{
		TenantAggregateRoot: m.tenantAggregateRoot(),
		StudentID:           m.StudentID,
		TermID:              m.TermID,
		ExpectedAmount:      m.ExpectedAmount,
		PaidAmount:          m.PaidAmount,
		OutstandingAmount:   m.OutstandingAmount,
		OverdueAmount:       m.OverdueAmount,
		CarryForwardAmount:  m.CarryForwardAmount,
		Status:              m.Status,
		CapturedAt:          m.CapturedAt,
	}
}

// FromDomain populates the persistence model from a domain StudentFeeSnapshot entity.
func (m *StudentFeeSnapshotModel) FromDomain(s *billing.StudentFeeSnapshot) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.StudentID = s.StudentID
	m.TermID = s.TermID
	m.ExpectedAmount = s.ExpectedAmount
	m.PaidAmount = s.PaidAmount
	m.OutstandingAmount = s.OutstandingAmount
	m.OverdueAmount = s.OverdueAmount
	m.CarryForwardAmount = s.CarryForwardAmount
	m.Status = s.Status
	m.CapturedAt = s.CapturedAt
}

// StudentFeeSnapshotModelFromDomain creates a new persistence model from a domain snapshot.
func StudentFeeSnapshotModelFromDomain(s *billing.StudentFeeSnapshot) *StudentFeeSnapshotModel {
	m := &StudentFeeSnapshotModel{}
	m.FromDomain(s)
	return m
}
