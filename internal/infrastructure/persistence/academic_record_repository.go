package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/academic"
	"github.com/schoolerp/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAcademicRecordRepository implements AcademicRecordRepository using GORM.
// Records are insert-only; later records supersede earlier ones.
type GormAcademicRecordRepository struct {
	db *gorm.DB
}

// NewGormAcademicRecordRepository creates a new GormAcademicRecordRepository
func NewGormAcademicRecordRepository(db *gorm.DB) *GormAcademicRecordRepository {
	return &GormAcademicRecordRepository{db: db}
}

// FindByStudentAndTerm finds the record for a (student, term) pair
func (r *GormAcademicRecordRepository) FindByStudentAndTerm(ctx context.Context, tenantID, studentID, termID uuid.UUID) (*academic.StudentAcademicRecord, error) {
	var model models.StudentAcademicRecordModel
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

// FindByTerm finds all records in a term
func (r *GormAcademicRecordRepository) FindByTerm(ctx context.Context, tenantID, termID uuid.UUID, filter academic.AcademicRecordFilter) ([]academic.StudentAcademicRecord, error) {
	var recordModels []models.StudentAcademicRecordModel
	query := r.db.WithContext(ctx).Model(&models.StudentAcademicRecordModel{}).
		Where("tenant_id = ? AND term_id = ?", tenantID, termID)
	query = r.applyRecordFilter(query, filter)

	if err := query.Find(&recordModels).Error; err != nil {
		return nil, err
	}
	records := make([]academic.StudentAcademicRecord, len(recordModels))
	for i, model := range recordModels {
		records[i] = *model.ToDomain()
	}
	return records, nil
}

// FindByStudent finds all records for a student
func (r *GormAcademicRecordRepository) FindByStudent(ctx context.Context, tenantID, studentID uuid.UUID) ([]academic.StudentAcademicRecord, error) {
	var recordModels []models.StudentAcademicRecordModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND student_id = ?", tenantID, studentID).
		Order("created_at ASC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}
	records := make([]academic.StudentAcademicRecord, len(recordModels))
	for i, model := range recordModels {
		records[i] = *model.ToDomain()
	}
	return records, nil
}

// Create persists a new record
func (r *GormAcademicRecordRepository) Create(ctx context.Context, record *academic.StudentAcademicRecord) error {
	model := models.StudentAcademicRecordModelFromDomain(record)
	return r.db.WithContext(ctx).Create(model).Error
}

// applyRecordFilter applies filter options to the query
func (r *GormAcademicRecordRepository) applyRecordFilter(query *gorm.DB, filter academic.AcademicRecordFilter) *gorm.DB {
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
		field := ValidateSortField(filter.OrderBy, AcademicRecordSortFields, "created_at")
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at ASC")
	}

	return query
}
