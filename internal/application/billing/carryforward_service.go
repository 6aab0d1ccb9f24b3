package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/academic"
	"github.com/schoolerp/backend/internal/domain/billing"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/domain/shared/valueobject"
	"github.com/schoolerp/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CarryForwardService moves unpaid balances from a closed term into a
// later term as per-student expected-fee lines. The batch is guarded two
// ways: an idempotency key rejects a repeated run outright, and a
// per-student duplicate check skips anyone who already has a
// carry-forward row for the same (student, fromTerm, toTerm) triple.
type CarryForwardService struct {
	scope       TransactionScope
	feeRepo     billing.ExpectedFeeRepository
	allocRepo   billing.PaymentAllocationRepository
	recordRepo  academic.AcademicRecordRepository
	termRepo    academic.TermRepository
	idempotency shared.IdempotencyStore
	idemConfig  shared.IdempotencyConfig
	logger      *zap.Logger
}

// NewCarryForwardService creates a new CarryForwardService
func NewCarryForwardService(
	scope TransactionScope,
	feeRepo billing.ExpectedFeeRepository,
	allocRepo billing.PaymentAllocationRepository,
	recordRepo academic.AcademicRecordRepository,
	termRepo academic.TermRepository,
	idempotency shared.IdempotencyStore,
	idemConfig shared.IdempotencyConfig,
	logger *zap.Logger,
) *CarryForwardService {
	return &CarryForwardService{
		scope:       scope,
		feeRepo:     feeRepo,
		allocRepo:   allocRepo,
		recordRepo:  recordRepo,
		termRepo:    termRepo,
		idempotency: idempotency,
		idemConfig:  idemConfig,
		logger:      logger,
	}
}

// StudentOutstanding is one student's unpaid balance in a term
type StudentOutstanding struct {
	StudentID   uuid.UUID       `json:"student_id"`
	Expected    decimal.Decimal `json:"expected"`
	Paid        decimal.Decimal `json:"paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Reason      string          `json:"reason"`
}

// CalculateOutstanding computes expected minus paid for every student
// with an academic record in the term, returning only positive remainders.
func (s *CarryForwardService) CalculateOutstanding(ctx context.Context, tenantID, termID uuid.UUID) ([]StudentOutstanding, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "carryforward", "calculate_outstanding")
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

	fees, err := s.feeRepo.FindByTerm(ctx, tenantID, termID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load fees: %w", err)
	}
	feePtrs := make([]*billing.ExpectedFee, len(fees))
	for i := range fees {
		feePtrs[i] = &fees[i]
	}

	outstanding := make([]StudentOutstanding, 0)
	for i := range records {
		record := &records[i]
		classID := uuid.Nil
		classScoped := false
		if record.ClassID != nil {
			classID = *record.ClassID
			classScoped = true
		}
		expectation := billing.ResolveExpectation(feePtrs, record.StudentID, classID, classScoped)
		if expectation.TotalExpected.LessThanOrEqual(decimal.Zero) {
			continue
		}

		paid, err := s.allocRepo.SumByStudentAndTerm(ctx, tenantID, record.StudentID, termID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to sum allocations for student %s: %w", record.StudentID, err)
		}

		balance := expectation.TotalExpected.Sub(paid)
		if balance.LessThanOrEqual(decimal.Zero) {
			continue
		}

		outstanding = append(outstanding, StudentOutstanding{
			StudentID:   record.StudentID,
			Expected:    expectation.TotalExpected,
			Paid:        paid,
			Outstanding: balance,
			Reason:      fmt.Sprintf("Balance carried forward from %s", term.Name),
		})
	}

	return outstanding, nil
}

// CarryForwardSummary reports what one carry-forward run did
type CarryForwardSummary struct {
	FromTermID   uuid.UUID       `json:"from_term_id"`
	ToTermID     uuid.UUID       `json:"to_term_id"`
	StudentCount int             `json:"student_count"`
	CreatedCount int             `json:"created_count"`
	SkippedCount int             `json:"skipped_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// CarryForward creates one carry-forward expected-fee row in toTerm per
// outstanding balance in fromTerm. The whole batch commits atomically.
// Re-running for the same term pair is rejected while the idempotency key
// lives; the key is recorded only once the batch has committed, so a
// failed run never blocks a retry. Students who already have a matching
// carry-forward row are skipped and counted rather than doubled.
func (s *CarryForwardService) CarryForward(ctx context.Context, tenantID, fromTermID, toTermID uuid.UUID) (*CarryForwardSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "carryforward", "carry_forward")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		"from_term_id", fromTermID.String(),
		"to_term_id", toTermID.String(),
	)

	if fromTermID == toTermID {
		err := shared.NewDomainError("INVALID_ARGUMENT", "Cannot carry a term's balances into itself")
		telemetry.RecordError(span, err)
		return nil, err
	}

	toTerm, err := s.termRepo.FindByIDForTenant(ctx, tenantID, toTermID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load target term: %w", err)
	}
	if toTerm == nil {
		err := shared.NewDomainError("TERM_NOT_FOUND", "Target term not found")
		telemetry.RecordError(span, err)
		return nil, err
	}

	idemKey := fmt.Sprintf("carryforward:%s:%s:%s", tenantID, fromTermID, toTermID)
	if s.idemConfig.Enabled {
		done, err := s.idempotency.IsProcessed(ctx, idemKey)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if done {
			err := shared.NewDomainError("STATE_CONFLICT", "Carry-forward already ran for this term pair")
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	balances, err := s.CalculateOutstanding(ctx, tenantID, fromTermID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if len(balances) == 0 {
		err := shared.NewDomainError("STATE_CONFLICT", "Term has no outstanding balances to carry forward")
		telemetry.RecordError(span, err)
		return nil, err
	}

	summary := &CarryForwardSummary{
		FromTermID:  fromTermID,
		ToTermID:    toTermID,
		TotalAmount: decimal.Zero,
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		existing, err := repos.FeeRepo().FindCarryForward(ctx, tenantID, fromTermID, toTermID, nil)
		if err != nil {
			return fmt.Errorf("failed to load existing carry-forward rows: %w", err)
		}
		carried := make(map[uuid.UUID]bool, len(existing))
		for i := range existing {
			if existing[i].StudentID != nil {
				carried[*existing[i].StudentID] = true
			}
		}

		fees := make([]*billing.ExpectedFee, 0, len(balances))
		for _, balance := range balances {
			summary.StudentCount++
			if carried[balance.StudentID] {
				summary.SkippedCount++
				continue
			}
			fee, err := billing.NewCarryForwardFee(
				tenantID, balance.StudentID, fromTermID, toTermID,
				valueobject.NewMoneyUGX(balance.Outstanding), balance.Reason,
			)
			if err != nil {
				return err
			}
			fees = append(fees, fee)
			summary.TotalAmount = summary.TotalAmount.Add(balance.Outstanding)
		}

		if len(fees) > 0 {
			if err := repos.FeeRepo().SaveAll(ctx, fees); err != nil {
				return fmt.Errorf("failed to save carry-forward fees: %w", err)
			}
		}
		summary.CreatedCount = len(fees)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	// The key is set only after the batch commits so a failed run can be
	// retried. Concurrent runs in the window before the mark are absorbed
	// by the per-student duplicate check inside the transaction.
	if s.idemConfig.Enabled {
		if _, err := s.idempotency.MarkProcessed(ctx, idemKey, s.idemConfig.TTL); err != nil {
			s.logger.Warn("failed to record carry-forward idempotency key",
				zap.String("key", idemKey),
				zap.Error(err),
			)
		}
	}

	telemetry.AddEvent(span, "balances_carried_forward",
		"created", summary.CreatedCount,
		"skipped", summary.SkippedCount,
		"total_amount", summary.TotalAmount.String(),
	)
	s.logger.Info("carry-forward completed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("from_term", fromTermID.String()),
		zap.String("to_term", toTermID.String()),
		zap.Int("students", summary.StudentCount),
		zap.Int("created", summary.CreatedCount),
		zap.Int("skipped", summary.SkippedCount),
		zap.String("total_amount", summary.TotalAmount.String()),
	)

	return summary, nil
}

// Reverse deletes system-generated carry-forward rows that originate from
// fromTerm and live in toTerm, optionally narrowed to one student. Used
// only for corrections.
func (s *CarryForwardService) Reverse(ctx context.Context, tenantID, fromTermID, toTermID uuid.UUID, studentID *uuid.UUID) (int, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "carryforward", "reverse")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		"from_term_id", fromTermID.String(),
		"to_term_id", toTermID.String(),
	)

	removed := 0
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		rows, err := repos.FeeRepo().FindCarryForward(ctx, tenantID, fromTermID, toTermID, studentID)
		if err != nil {
			return fmt.Errorf("failed to load carry-forward rows: %w", err)
		}
		for i := range rows {
			if err := repos.FeeRepo().DeleteForTenant(ctx, tenantID, rows[i].ID); err != nil {
				return fmt.Errorf("failed to delete carry-forward row %s: %w", rows[i].ID, err)
			}
			removed++
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, err
	}

	s.logger.Info("carry-forward reversed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("from_term", fromTermID.String()),
		zap.String("to_term", toTermID.String()),
		zap.Int("removed", removed),
	)
	return removed, nil
}
