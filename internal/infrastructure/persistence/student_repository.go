package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/academic"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStudentRepository implements StudentRepository using GORM
type GormStudentRepository struct {
	db *gorm.DB
}

// NewGormStudentRepository creates a new GormStudentRepository
func NewGormStudentRepository(db *gorm.DB) *GormStudentRepository {
	return &GormStudentRepository{db: db}
}

// FindByIDForTenant finds a student by ID for a specific tenant
func (r *GormStudentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*academic.Student, error) {
	var model models.StudentModel
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

// FindByAdmissionNumber finds a student by admission number for a tenant
func (r *GormStudentRepository) FindByAdmissionNumber(ctx context.Context, tenantID uuid.UUID, admissionNumber string) (*academic.Student, error) {
	var model models.StudentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND admission_number = ?", tenantID, admissionNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all students for a tenant
func (r *GormStudentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]academic.Student, error) {
	var studentModels []models.StudentModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.StudentModel{}).
			Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&studentModels).Error; err != nil {
		return nil, err
	}
	students := make([]academic.Student, len(studentModels))
	for i, model := range studentModels {
		students[i] = *model.ToDomain()
	}
	return students, nil
}

// Save creates or updates a student
func (r *GormStudentRepository) Save(ctx context.Context, student *academic.Student) error {
	model := models.StudentModelFromDomain(student)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormStudentRepository) SaveWithLock(ctx context.Context, student *academic.Student) error {
	model := models.StudentModelFromDomain(student)
	result := r.db.WithContext(ctx).
		Model(&models.StudentModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Updates(map[string]interface{}{
			"class_id":           model.ClassID,
			"enrollment_term_id": model.EnrollmentTermID,
			"graduation_term_id": model.GraduationTermID,
			"is_active":          model.IsActive,
			"version":            model.Version,
			"updated_at":         model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Student was modified by another transaction")
	}
	return nil
}

// applyFilter applies pagination and ordering to the query
func (r *GormStudentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		field := ValidateSortField(filter.OrderBy, StudentSortFields, "admission_number")
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("admission_number ASC")
	}

	return query
}
