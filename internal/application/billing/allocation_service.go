package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/academic"
	"github.com/schoolerp/backend/internal/domain/billing"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/domain/shared/valueobject"
	"github.com/schoolerp/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AllocationService distributes captured payments across terms. Every
// write path runs inside one transaction scope; eligibility is re-checked
// server-side on each call regardless of what the caller claims.
type AllocationService struct {
	scope       TransactionScope
	paymentRepo billing.PaymentRepository
	allocRepo   billing.PaymentAllocationRepository
	feeRepo     billing.ExpectedFeeRepository
	studentRepo academic.StudentRepository
	eligibility *academic.TermEligibilityResolver
	logger      *zap.Logger
}

// NewAllocationService creates a new AllocationService
func NewAllocationService(
	scope TransactionScope,
	paymentRepo billing.PaymentRepository,
	allocRepo billing.PaymentAllocationRepository,
	feeRepo billing.ExpectedFeeRepository,
	studentRepo academic.StudentRepository,
	eligibility *academic.TermEligibilityResolver,
	logger *zap.Logger,
) *AllocationService {
	return &AllocationService{
		scope:       scope,
		paymentRepo: paymentRepo,
		allocRepo:   allocRepo,
		feeRepo:     feeRepo,
		studentRepo: studentRepo,
		eligibility: eligibility,
		logger:      logger,
	}
}

// AllocationRequestItem names one (term, amount, reason) split
type AllocationRequestItem struct {
	TermID uuid.UUID
	Amount decimal.Decimal
	Reason billing.AllocationReason
}

// AllocateRequest represents a request to allocate a captured payment
type AllocateRequest struct {
	TenantID  uuid.UUID
	PaymentID uuid.UUID
	Items     []AllocationRequestItem
	// BankRemainder banks any unallocated remainder to the credit ledger
	// inside the same transaction.
	BankRemainder bool
	IsAuto        bool
	Remark        string
}

// AllocateResult summarizes the writes of one allocation call
type AllocateResult struct {
	PaymentID         uuid.UUID       `json:"payment_id"`
	AllocationIDs     []uuid.UUID     `json:"allocation_ids"`
	TotalAllocated    decimal.Decimal `json:"total_allocated"`
	CreditedAmount    decimal.Decimal `json:"credited_amount"`
	CreditEntryID     *uuid.UUID      `json:"credit_entry_id,omitempty"`
	UnallocatedAmount decimal.Decimal `json:"unallocated_amount"`
	IsFullyAllocated  bool            `json:"is_fully_allocated"`
}

// Allocate validates and persists a set of allocation requests for one
// payment. All validation happens before any write; the allocation rows,
// the payment summary update and the optional credit entry commit
// atomically or not at all.
func (s *AllocationService) Allocate(ctx context.Context, req AllocateRequest) (*AllocateResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "allocation", "allocate")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, req.TenantID.String(),
		telemetry.SpanAttrPaymentID, req.PaymentID.String(),
		"items_count", len(req.Items),
	)

	if len(req.Items) == 0 && !req.BankRemainder {
		err := shared.NewDomainError("INVALID_ARGUMENT", "Allocation request has no items")
		telemetry.RecordError(span, err)
		return nil, err
	}
	for _, item := range req.Items {
		if item.Amount.LessThanOrEqual(decimal.Zero) {
			err := shared.NewDomainError("INVALID_AMOUNT",
				fmt.Sprintf("Allocation amount for term %s must be positive", item.TermID))
			telemetry.RecordError(span, err)
			return nil, err
		}
		if !item.Reason.IsValid() {
			err := shared.NewDomainError("INVALID_REASON",
				fmt.Sprintf("Allocation reason %q is not valid", item.Reason))
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	payment, err := s.paymentRepo.FindByIDForTenant(ctx, req.TenantID, req.PaymentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		err := shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !payment.Status.CanAllocate() {
		err := shared.NewDomainError("STATE_CONFLICT",
			fmt.Sprintf("Cannot allocate payment in %s status", payment.Status))
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.checkEligibility(ctx, req.TenantID, payment.StudentID, req.Items); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var result *AllocateResult
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		// Reload inside the transaction so the optimistic lock covers the
		// whole read-modify-write.
		payment, err := repos.PaymentRepo().FindByIDForTenant(ctx, req.TenantID, req.PaymentID)
		if err != nil {
			return fmt.Errorf("failed to load payment: %w", err)
		}
		if payment == nil {
			return shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
		}

		allocations := make([]*billing.PaymentAllocation, 0, len(req.Items))
		for _, item := range req.Items {
			alloc, err := billing.NewPaymentAllocation(
				req.TenantID, payment.ID, payment.StudentID, item.TermID,
				valueobject.NewMoneyUGX(item.Amount), item.Reason, req.IsAuto,
			)
			if err != nil {
				return err
			}
			if err := payment.RecordAllocation(item.Amount); err != nil {
				return err
			}
			allocations = append(allocations, alloc)
		}

		result = &AllocateResult{
			PaymentID:      payment.ID,
			AllocationIDs:  make([]uuid.UUID, 0, len(allocations)),
			CreditedAmount: decimal.Zero,
		}

		if req.BankRemainder {
			remainder := payment.UnallocatedAmount()
			if remainder.GreaterThan(decimal.Zero) {
				remark := req.Remark
				if remark == "" {
					remark = fmt.Sprintf("Surplus from payment %s", payment.PaymentNumber)
				}
				entry, err := billing.NewCreditLedgerEntry(
					req.TenantID, payment.StudentID, payment.TermID, &payment.ID,
					valueobject.NewMoneyUGX(remainder), remark,
				)
				if err != nil {
					return err
				}
				if err := payment.RecordCredit(remainder); err != nil {
					return err
				}
				if err := repos.CreditRepo().Save(ctx, entry); err != nil {
					return fmt.Errorf("failed to save credit entry: %w", err)
				}
				result.CreditedAmount = remainder
				result.CreditEntryID = &entry.ID
			}
		}

		if len(allocations) > 0 {
			if err := repos.AllocationRepo().SaveAll(ctx, allocations); err != nil {
				return fmt.Errorf("failed to save allocations: %w", err)
			}
		}
		if err := repos.PaymentRepo().SaveWithLock(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		for _, alloc := range allocations {
			result.AllocationIDs = append(result.AllocationIDs, alloc.ID)
		}
		result.TotalAllocated = payment.TotalAllocated
		result.UnallocatedAmount = payment.UnallocatedAmount()
		result.IsFullyAllocated = payment.IsFullyAllocated
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.AddEvent(span, "payment_allocated",
		"total_allocated", result.TotalAllocated.String(),
		"credited_amount", result.CreditedAmount.String(),
	)
	s.logger.Info("payment allocated",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("payment_id", req.PaymentID.String()),
		zap.Int("allocations", len(result.AllocationIDs)),
		zap.String("total_allocated", result.TotalAllocated.String()),
		zap.String("credited", result.CreditedAmount.String()),
		zap.Bool("auto", req.IsAuto),
	)

	return result, nil
}

// ListByPayment returns every allocation row recorded against a payment.
func (s *AllocationService) ListByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) ([]billing.PaymentAllocation, error) {
	payment, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		return nil, shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
	}
	return s.allocRepo.FindByPayment(ctx, tenantID, paymentID)
}

// Suggest proposes a priority-ordered allocation plan for a payment's
// unallocated remainder: ended terms with outstanding balances oldest
// first, then the collection term's own fees.
func (s *AllocationService) Suggest(ctx context.Context, tenantID, paymentID uuid.UUID) (*billing.AllocationPlan, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "allocation", "suggest")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrPaymentID, paymentID.String(),
	)

	payment, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		err := shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
		telemetry.RecordError(span, err)
		return nil, err
	}

	window, err := s.resolveWindow(ctx, tenantID, payment.StudentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	student, err := s.studentRepo.FindByIDForTenant(ctx, tenantID, payment.StudentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load student: %w", err)
	}
	if student == nil {
		err := shared.NewDomainError("STUDENT_NOT_FOUND", "Student not found")
		telemetry.RecordError(span, err)
		return nil, err
	}
	classID, classScoped := student.ClassScope()

	targets := make([]billing.TermOutstanding, 0, len(window.Terms))
	for i := range window.Terms {
		term := &window.Terms[i]
		fees, err := s.feeRepo.FindByTerm(ctx, tenantID, term.ID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to load fees for term %s: %w", term.ID, err)
		}
		feePtrs := make([]*billing.ExpectedFee, len(fees))
		for j := range fees {
			feePtrs[j] = &fees[j]
		}
		expectation := billing.ResolveExpectation(feePtrs, student.ID, classID, classScoped)

		paid, err := s.allocRepo.SumByStudentAndTerm(ctx, tenantID, student.ID, term.ID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to sum allocations for term %s: %w", term.ID, err)
		}

		targets = append(targets, billing.TermOutstanding{
			TermID:          term.ID,
			TermName:        term.Name,
			PeriodStartDate: term.PeriodStartDate,
			TermNumber:      term.TermNumber,
			StartDate:       term.StartDate,
			EndDate:         term.EndDate,
			IsCompleted:     term.IsCompleted,
			Outstanding:     expectation.TotalExpected.Sub(paid),
		})
	}

	plan, err := billing.BuildAllocationPlan(payment, targets, time.Now())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return plan, nil
}

// AutoAllocate applies the suggestion plan through Allocate, banking any
// remainder as credit.
func (s *AllocationService) AutoAllocate(ctx context.Context, tenantID, paymentID uuid.UUID) (*AllocateResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "allocation", "auto_allocate")
	defer span.End()

	plan, err := s.Suggest(ctx, tenantID, paymentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	items := make([]AllocationRequestItem, 0, len(plan.Suggestions))
	for _, suggestion := range plan.Suggestions {
		items = append(items, AllocationRequestItem{
			TermID: suggestion.TermID,
			Amount: suggestion.SuggestedAmount,
			Reason: suggestion.Reason,
		})
	}

	result, err := s.Allocate(ctx, AllocateRequest{
		TenantID:      tenantID,
		PaymentID:     paymentID,
		Items:         items,
		BankRemainder: true,
		IsAuto:        true,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return result, nil
}

// checkEligibility re-applies the eligibility window to every requested
// term. The window encodes a business rule, not a UI hint.
func (s *AllocationService) checkEligibility(ctx context.Context, tenantID, studentID uuid.UUID, items []AllocationRequestItem) error {
	if len(items) == 0 {
		return nil
	}
	window, err := s.resolveWindow(ctx, tenantID, studentID)
	if err != nil {
		return err
	}
	for _, item := range items {
		if !window.Contains(item.TermID) {
			return shared.NewDomainError("ELIGIBILITY_VIOLATION",
				fmt.Sprintf("Term %s is outside the student's eligible window", item.TermID))
		}
	}
	return nil
}

func (s *AllocationService) resolveWindow(ctx context.Context, tenantID, studentID uuid.UUID) (*academic.EligibilityWindow, error) {
	student, err := s.studentRepo.FindByIDForTenant(ctx, tenantID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load student: %w", err)
	}
	if student == nil {
		return nil, shared.NewDomainError("STUDENT_NOT_FOUND", "Student not found")
	}

	window, err := s.eligibility.Resolve(ctx, tenantID, student)
	if err != nil {
		return nil, err
	}
	if window.Unbounded {
		s.logger.Warn("no enrollment term resolved, treating every term as eligible",
			zap.String("tenant_id", tenantID.String()),
			zap.String("student_id", studentID.String()),
		)
	}
	return window, nil
}
