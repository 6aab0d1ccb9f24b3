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

// PaymentService manages the payment capture lifecycle: recording cash
// collection events and moving them through pending, completed, failed
// and cancelled states. Allocation is a separate concern handled by
// AllocationService once a payment completes.
type PaymentService struct {
	scope       TransactionScope
	paymentRepo billing.PaymentRepository
	studentRepo academic.StudentRepository
	termRepo    academic.TermRepository
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	scope TransactionScope,
	paymentRepo billing.PaymentRepository,
	studentRepo academic.StudentRepository,
	termRepo academic.TermRepository,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		scope:       scope,
		paymentRepo: paymentRepo,
		studentRepo: studentRepo,
		termRepo:    termRepo,
		logger:      logger,
	}
}

// CapturePaymentRequest represents a request to record a cash collection
type CapturePaymentRequest struct {
	TenantID    uuid.UUID
	StudentID   uuid.UUID
	TermID      uuid.UUID // collection term; zero means the tenant's current term
	Amount      decimal.Decimal
	PaymentDate time.Time
	Method      string
	Reference   string
	// AutoComplete moves the capture straight to completed, the normal
	// case for cash and mobile-money receipts recorded after the fact.
	AutoComplete bool
}

// Capture records a new payment. The payment number is generated inside
// the same transaction that persists the row, so numbers stay gapless per
// tenant per day under concurrent captures.
func (s *PaymentService) Capture(ctx context.Context, req CapturePaymentRequest) (*billing.Payment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "capture")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, req.TenantID.String(),
		telemetry.SpanAttrStudentID, req.StudentID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	student, err := s.studentRepo.FindByIDForTenant(ctx, req.TenantID, req.StudentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load student: %w", err)
	}
	if student == nil {
		err := shared.NewDomainError("STUDENT_NOT_FOUND", "Student not found")
		telemetry.RecordError(span, err)
		return nil, err
	}

	termID := req.TermID
	if termID == uuid.Nil {
		current, err := s.termRepo.FindCurrent(ctx, req.TenantID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to resolve current term: %w", err)
		}
		if current == nil {
			err := shared.NewDomainError("TERM_NOT_FOUND", "No collection term given and no current term is set")
			telemetry.RecordError(span, err)
			return nil, err
		}
		termID = current.ID
	} else {
		term, err := s.termRepo.FindByIDForTenant(ctx, req.TenantID, termID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to load term: %w", err)
		}
		if term == nil {
			err := shared.NewDomainError("TERM_NOT_FOUND", "Collection term not found")
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	paymentDate := req.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	var payment *billing.Payment
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := repos.PaymentRepo().GeneratePaymentNumber(ctx, req.TenantID)
		if err != nil {
			return fmt.Errorf("failed to generate payment number: %w", err)
		}

		payment, err = billing.NewPayment(
			req.TenantID, number, req.StudentID, termID,
			valueobject.NewMoneyUGX(req.Amount), paymentDate, req.Method,
		)
		if err != nil {
			return err
		}
		payment.Reference = req.Reference

		if req.AutoComplete {
			if err := payment.Complete(); err != nil {
				return err
			}
		}
		return repos.PaymentRepo().Save(ctx, payment)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("payment captured",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("payment_number", payment.PaymentNumber),
		zap.String("student_id", req.StudentID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("status", payment.Status.String()),
	)
	return payment, nil
}

// Complete marks a pending payment as completed, making it allocatable
func (s *PaymentService) Complete(ctx context.Context, tenantID, paymentID uuid.UUID) (*billing.Payment, error) {
	return s.transition(ctx, tenantID, paymentID, "complete", (*billing.Payment).Complete)
}

// Fail marks a pending payment as failed
func (s *PaymentService) Fail(ctx context.Context, tenantID, paymentID uuid.UUID) (*billing.Payment, error) {
	return s.transition(ctx, tenantID, paymentID, "fail", (*billing.Payment).Fail)
}

// Cancel marks an unallocated payment as cancelled
func (s *PaymentService) Cancel(ctx context.Context, tenantID, paymentID uuid.UUID) (*billing.Payment, error) {
	return s.transition(ctx, tenantID, paymentID, "cancel", (*billing.Payment).Cancel)
}

func (s *PaymentService) transition(
	ctx context.Context,
	tenantID, paymentID uuid.UUID,
	operation string,
	apply func(*billing.Payment) error,
) (*billing.Payment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", operation)
	defer span.End()

	var payment *billing.Payment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payment, err = repos.PaymentRepo().FindByIDForTenant(ctx, tenantID, paymentID)
		if err != nil {
			return fmt.Errorf("failed to load payment: %w", err)
		}
		if payment == nil {
			return shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
		}
		if err := apply(payment); err != nil {
			return err
		}
		return repos.PaymentRepo().SaveWithLock(ctx, payment)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("payment status changed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("payment_number", payment.PaymentNumber),
		zap.String("status", payment.Status.String()),
	)
	return payment, nil
}

// Get returns a payment by ID
func (s *PaymentService) Get(ctx context.Context, tenantID, paymentID uuid.UUID) (*billing.Payment, error) {
	payment, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		return nil, shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
	}
	return payment, nil
}

// GetByNumber returns a payment by its payment number
func (s *PaymentService) GetByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*billing.Payment, error) {
	payment, err := s.paymentRepo.FindByPaymentNumber(ctx, tenantID, number)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		return nil, shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
	}
	return payment, nil
}

// List returns payments matching the filter
func (s *PaymentService) List(ctx context.Context, tenantID uuid.UUID, filter billing.PaymentFilter) ([]billing.Payment, error) {
	payments, err := s.paymentRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
