package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/billing"
	"github.com/schoolerp/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormFeeSnapshotRepository implements FeeSnapshotRepository using GORM
type GormFeeSnapshotRepository struct {
	db *gorm.DB
}

// NewGormFeeSnapshotRepository creates a new GormFeeSnapshotRepository
func NewGormFeeSnapshotRepository(db *gorm.DB) *GormFeeSnapshotRepository {
	return &GormFeeSnapshotRepository{db: db}
}

// FindByStudentAndTerm finds the snapshot for a (student, term) pair
func (r *GormFeeSnapshotRepository) FindByStudentAndTerm(ctx context.Context, tenantID, studentID, termID uuid.UUID) (*billing.StudentFeeSnapshot, error) {
	var model models.StudentFeeSnapshotModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND student_id = ? AND term_id = ?", tenantID, studentID, termID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTerm finds every snapshot captured for a term
func (r *GormFeeSnapshotRepository) FindByTerm(ctx context.Context, tenantID, termID uuid.UUID, filter billing.FeeSnapshotFilter) ([]billing.StudentFeeSnapshot, error) {
	var snapshotModels []models.StudentFeeSnapshotModel
	query := r.db.WithContext(ctx).Model(&models.StudentFeeSnapshotModel{}).
		Where("tenant_id = ? AND term_id = ?", tenantID, termID)
	query = r.applySnapshotFilter(query, filter)

	if err := query.Find(&snapshotModels).Error; err != nil {
		return nil, err
	}
	snapshots := make([]billing.StudentFeeSnapshot, len(snapshotModels))
	for i, model := range snapshotModels {
		snapshots[i] = *model.ToDomain()
	}
	return snapshots, nil
}

// SaveAll persists a batch of snapshots. Re-running a snapshot for the same
// term replaces the prior row per (tenant, student, term).
func (r *GormFeeSnapshotRepository) SaveAll(ctx context.Context, snapshots []*billing.StudentFeeSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	snapshotModels := make([]*models.StudentFeeSnapshotModel, len(snapshots))
	for i, snapshot := range snapshots {
		snapshotModels[i] = models.StudentFeeSnapshotModelFromDomain(snapshot)
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "tenant_id"},
				{Name: "student_id"},
				{Name: "term_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"expected_amount",
				"paid_amount",
				"outstanding_amount",
				"overdue_amount",
				"carry_forward_amount",
				"status",
				"captured_at",
				"version",
				"updated_at",
			}),
		}).
		Create(snapshotModels).Error
}

// applySnapshotFilter applies filter options to the query
func (r *GormFeeSnapshotRepository) applySnapshotFilter(query *gorm.DB, filter billing.FeeSnapshotFilter) *gorm.DB {
	if filter.TermID != nil {
		query = query.Where("term_id = ?", *filter.TermID)
	}
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("captured_at DESC")
	}

	return query
}
