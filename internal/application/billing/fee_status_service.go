package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/academic"
	"github.com/schoolerp/backend/internal/domain/billing"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FeeStatusService answers fee-status queries. For open terms the status
// is composed live from expected fees, allocations and the credit ledger;
// for terms with a snapshot the snapshot wins so the numbers stay stable
// after archival.
type FeeStatusService struct {
	feeRepo      billing.ExpectedFeeRepository
	allocRepo    billing.PaymentAllocationRepository
	creditRepo   billing.CreditLedgerRepository
	snapshotRepo billing.FeeSnapshotRepository
	recordRepo   academic.AcademicRecordRepository
	termRepo     academic.TermRepository
	logger       *zap.Logger
}

// NewFeeStatusService creates a new FeeStatusService
func NewFeeStatusService(
	feeRepo billing.ExpectedFeeRepository,
	allocRepo billing.PaymentAllocationRepository,
	creditRepo billing.CreditLedgerRepository,
	snapshotRepo billing.FeeSnapshotRepository,
	recordRepo academic.AcademicRecordRepository,
	termRepo academic.TermRepository,
	logger *zap.Logger,
) *FeeStatusService {
	return &FeeStatusService{
		feeRepo:      feeRepo,
		allocRepo:    allocRepo,
		creditRepo:   creditRepo,
		snapshotRepo: snapshotRepo,
		recordRepo:   recordRepo,
		termRepo:     termRepo,
		logger:       logger,
	}
}

// StudentStatus returns one student's fee position in a term. A snapshot,
// when present, is returned as-is with only the credit balance refreshed.
func (s *FeeStatusService) StudentStatus(ctx context.Context, tenantID, studentID, termID uuid.UUID) (*billing.StudentFeeStatus, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "fee_status", "student_status")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrStudentID, studentID.String(),
		telemetry.SpanAttrTermID, termID.String(),
	)

	creditBalance, err := s.creditRepo.SumRemainingByStudent(ctx, tenantID, studentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to sum credit balance: %w", err)
	}

	snapshot, err := s.snapshotRepo.FindByStudentAndTerm(ctx, tenantID, studentID, termID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if snapshot != nil {
		status := snapshot.ToStatus(creditBalance)
		return &status, nil
	}

	term, err := s.termRepo.FindByIDForTenant(ctx, tenantID, termID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load term: %w", err)
	}
	if term == nil {
		err := shared.NewDomainError("TERM_NOT_FOUND", "Term not found")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if term.HasEnded(time.Now()) {
		s.logger.Warn("no snapshot for ended term, deriving status live",
			zap.String("tenant_id", tenantID.String()),
			zap.String("student_id", studentID.String()),
			zap.String("term_id", termID.String()),
		)
	}

	status, err := s.composeLiveStatus(ctx, tenantID, studentID, termID, creditBalance)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return status, nil
}

func (s *FeeStatusService) composeLiveStatus(ctx context.Context, tenantID, studentID, termID uuid.UUID, creditBalance decimal.Decimal) (*billing.StudentFeeStatus, error) {
	record, err := s.recordRepo.FindByStudentAndTerm(ctx, tenantID, studentID, termID)
	if err != nil {
		return nil, fmt.Errorf("failed to load academic record: %w", err)
	}
	if record == nil {
		return nil, shared.NewDomainError("STUDENT_NOT_ENROLLED", "Student has no academic record in this term")
	}

	classID := uuid.Nil
	classScoped := false
	if record.ClassID != nil {
		classID = *record.ClassID
		classScoped = true
	}

	fees, err := s.feeRepo.FindByTerm(ctx, tenantID, termID)
	if err != nil {
		return nil, fmt.Errorf("failed to load fees: %w", err)
	}
	feePtrs := make([]*billing.ExpectedFee, len(fees))
	for i := range fees {
		feePtrs[i] = &fees[i]
	}

	paid, err := s.allocRepo.SumByStudentAndTerm(ctx, tenantID, studentID, termID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum allocations: %w", err)
	}

	expectation := billing.ResolveExpectation(feePtrs, studentID, classID, classScoped)
	dueLines := billing.MandatoryDueLines(feePtrs, studentID, classID, classScoped)
	overdue := billing.CalculateOverdue(dueLines, expectation.TotalExpected, paid, time.Now())

	status := billing.NewStudentFeeStatus(studentID, termID, expectation, paid, overdue, creditBalance)
	return &status, nil
}

// TermSummary aggregates fee collection across every student enrolled in
// a term
type TermSummary struct {
	TermID                   uuid.UUID       `json:"term_id"`
	TermName                 string          `json:"term_name"`
	HasEnded                 bool            `json:"has_ended"`
	StudentCount             int             `json:"student_count"`
	TotalExpected            decimal.Decimal `json:"total_expected"`
	TotalPaid                decimal.Decimal `json:"total_paid"`
	TotalOutstanding         decimal.Decimal `json:"total_outstanding"`
	TotalOverdue             decimal.Decimal `json:"total_overdue"`
	AveragePaymentPerStudent decimal.Decimal `json:"average_payment_per_student"`
	PaidCount                int             `json:"paid_count"`
	PartialCount             int             `json:"partial_count"`
	UnpaidCount              int             `json:"unpaid_count"`
	OverpaidCount            int             `json:"overpaid_count"`
}

// Summary computes the collection summary for a term. Each student's
// position comes from their snapshot when one exists, otherwise it is
// derived live.
func (s *FeeStatusService) Summary(ctx context.Context, tenantID, termID uuid.UUID) (*TermSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "fee_status", "term_summary")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrTermID, termID.String(),
	)

	term, err := s.termRepo.FindByIDForTenant(ctx, tenantID, termID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load term: %w", err)
	}
	if term == nil {
		err := shared.NewDomainError("TERM_NOT_FOUND", "Term not found")
		telemetry.RecordError(span, err)
		return nil, err
	}

	records, err := s.recordRepo.FindByTerm(ctx, tenantID, termID, academic.AcademicRecordFilter{})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load academic records: %w", err)
	}

	summary := &TermSummary{
		TermID:                   termID,
		TermName:                 term.Name,
		HasEnded:                 term.HasEnded(time.Now()),
		TotalExpected:            decimal.Zero,
		TotalPaid:                decimal.Zero,
		TotalOutstanding:         decimal.Zero,
		TotalOverdue:             decimal.Zero,
		AveragePaymentPerStudent: decimal.Zero,
	}

	for i := range records {
		if records[i].Status != academic.EnrollmentStatusActive {
			continue
		}
		status, err := s.StudentStatus(ctx, tenantID, records[i].StudentID, termID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}

		summary.StudentCount++
		summary.TotalExpected = summary.TotalExpected.Add(status.ExpectedAmount)
		summary.TotalPaid = summary.TotalPaid.Add(status.PaidAmount)
		summary.TotalOutstanding = summary.TotalOutstanding.Add(status.OutstandingAmount)
		summary.TotalOverdue = summary.TotalOverdue.Add(status.OverdueAmount)

		switch status.Status {
		case billing.FeeStatusPaid:
			summary.PaidCount++
		case billing.FeeStatusPartial:
			summary.PartialCount++
		case billing.FeeStatusOverpaid:
			summary.OverpaidCount++
		default:
			summary.UnpaidCount++
		}
	}

	if summary.StudentCount > 0 {
		summary.AveragePaymentPerStudent = summary.TotalPaid.
			Div(decimal.NewFromInt(int64(summary.StudentCount))).Round(2)
	}

	return summary, nil
}

// WriteSnapshots freezes the live fee status of every enrolled student in
// a term. Intended to run once the term has ended; re-running replaces
// the prior snapshots.
func (s *FeeStatusService) WriteSnapshots(ctx context.Context, tenantID, termID uuid.UUID) (int, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "fee_status", "write_snapshots")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrTermID, termID.String(),
	)

	term, err := s.termRepo.FindByIDForTenant(ctx, tenantID, termID)
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, fmt.Errorf("failed to load term: %w", err)
	}
	if term == nil {
		err := shared.NewDomainError("TERM_NOT_FOUND", "Term not found")
		telemetry.RecordError(span, err)
		return 0, err
	}
	if !term.HasEnded(time.Now()) {
		err := shared.NewDomainError("STATE_CONFLICT", "Cannot snapshot a term that has not ended")
		telemetry.RecordError(span, err)
		return 0, err
	}

	records, err := s.recordRepo.FindByTerm(ctx, tenantID, termID, academic.AcademicRecordFilter{})
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, fmt.Errorf("failed to load academic records: %w", err)
	}

	snapshots := make([]*billing.StudentFeeSnapshot, 0, len(records))
	for i := range records {
		status, err := s.composeLiveStatus(ctx, tenantID, records[i].StudentID, termID, decimal.Zero)
		if err != nil {
			telemetry.RecordError(span, err)
			return 0, err
		}
		snapshot, err := billing.NewStudentFeeSnapshot(tenantID, *status)
		if err != nil {
			telemetry.RecordError(span, err)
			return 0, err
		}
		snapshots = append(snapshots, snapshot)
	}

	if len(snapshots) > 0 {
		if err := s.snapshotRepo.SaveAll(ctx, snapshots); err != nil {
			telemetry.RecordError(span, err)
			return 0, fmt.Errorf("failed to save snapshots: %w", err)
		}
	}

	s.logger.Info("fee snapshots written",
		zap.String("tenant_id", tenantID.String()),
		zap.String("term_id", termID.String()),
		zap.Int("count", len(snapshots)),
	)
	return len(snapshots), nil
}
