package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/billing"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCreditLedgerRepository implements CreditLedgerRepository using GORM
type GormCreditLedgerRepository struct {
	db *gorm.DB
}

// NewGormCreditLedgerRepository creates a new GormCreditLedgerRepository
func NewGormCreditLedgerRepository(db *gorm.DB) *GormCreditLedgerRepository {
	return &GormCreditLedgerRepository{db: db}
}

// FindByIDForTenant finds a ledger entry by ID for a tenant
func (r *GormCreditLedgerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.CreditLedgerEntry, error) {
	var model models.CreditLedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByStudent finds a student's consumable entries, oldest first.
// Oldest-first ordering drives FIFO credit consumption.
func (r *GormCreditLedgerRepository) FindActiveByStudent(ctx context.Context, tenantID, studentID uuid.UUID) ([]billing.CreditLedgerEntry, error) {
	var entryModels []models.CreditLedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND student_id = ? AND status = ? AND remaining_amount > 0",
			tenantID, studentID, billing.CreditStatusActive).
		Order("created_at ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entries := make([]billing.CreditLedgerEntry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}

// FindAllForTenant finds ledger entries for a tenant with filtering
func (r *GormCreditLedgerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.CreditLedgerFilter) ([]billing.CreditLedgerEntry, error) {
	var entryModels []models.CreditLedgerEntryModel
	query := r.db.WithContext(ctx).Model(&models.CreditLedgerEntryModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyCreditFilter(query, filter)

	if err := query.Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entries := make([]billing.CreditLedgerEntry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}

// Save creates or updates a ledger entry
func (r *GormCreditLedgerRepository) Save(ctx context.Context, entry *billing.CreditLedgerEntry) error {
	model := models.CreditLedgerEntryModelFromDomain(entry)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormCreditLedgerRepository) SaveWithLock(ctx context.Context, entry *billing.CreditLedgerEntry) error {
	model := models.CreditLedgerEntryModelFromDomain(entry)
	result := r.db.WithContext(ctx).
		Model(&models.CreditLedgerEntryModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Updates(map[string]interface{}{
			"remaining_amount": model.RemainingAmount,
			"status":           model.Status,
			"applied_at":       model.AppliedAt,
			"refunded_at":      model.RefundedAt,
			"version":          model.Version,
			"updated_at":       model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Credit ledger entry was modified by another transaction")
	}
	return nil
}

// SumRemainingByStudent sums remaining balances across a student's active
// entries, irrespective of originating term
func (r *GormCreditLedgerRepository) SumRemainingByStudent(ctx context.Context, tenantID, studentID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.CreditLedgerEntryModel{}).
		Select("COALESCE(SUM(remaining_amount), 0) as total").
		Where("tenant_id = ? AND student_id = ? AND status = ?",
			tenantID, studentID, billing.CreditStatusActive).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// applyCreditFilter applies filter options to the query
func (r *GormCreditLedgerRepository) applyCreditFilter(query *gorm.DB, filter billing.CreditLedgerFilter) *gorm.DB {
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.TermID != nil {
		query = query.Where("term_id = ?", *filter.TermID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		field := ValidateSortField(filter.OrderBy, CreditSortFields, "created_at")
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at ASC")
	}

	return query
}
