package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bea-academy/academy-go-api/internal/models"
)

// EnrollmentRepository manages enrollment history rows. The invariant it
// maintains: per (student_id, subprogram_id), at most one active row.
type EnrollmentRepository interface {
	UpsertActive(ctx context.Context, studentID, classID, subprogramID uint) (models.EnrollmentHistory, error)
	DeactivateOthers(ctx context.Context, studentID, subprogramID, keepClassID uint) (int64, error)
	GetActive(ctx context.Context, studentID, subprogramID uint) (models.EnrollmentHistory, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.EnrollmentHistory, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository constructs a repository backed by GORM.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

// UpsertActive activates the history row for (student, class, subprogram),
// creating it when missing. It does not touch other rows; callers pair it
// with DeactivateOthers.
func (r *enrollmentRepository) UpsertActive(ctx context.Context, studentID, classID, subprogramID uint) (models.EnrollmentHistory, error) {
	var row models.EnrollmentHistory
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("class_id = ?", classID).
		Where("subprogram_id = ?", subprogramID).
		Take(&row).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return models.EnrollmentHistory{}, err
		}
		row = models.EnrollmentHistory{
			StudentID:    studentID,
			ClassID:      classID,
			SubprogramID: subprogramID,
			IsActive:     true,
		}
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			return models.EnrollmentHistory{}, err
		}
		return row, nil
	}

	if !row.IsActive {
		row.IsActive = true
		if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
			return models.EnrollmentHistory{}, err
		}
	}

	return row, nil
}

// DeactivateOthers clears the active flag on every row of the same
// subprogram pointing at a different class. Cross-level history is never
// touched.
func (r *enrollmentRepository) DeactivateOthers(ctx context.Context, studentID, subprogramID, keepClassID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.EnrollmentHistory{}).
		Where("student_id = ?", studentID).
		Where("subprogram_id = ?", subprogramID).
		Where("class_id <> ?", keepClassID).
		Where("is_active = ?", true).
		Update("is_active", false)

	return result.RowsAffected, result.Error
}

func (r *enrollmentRepository) GetActive(ctx context.Context, studentID, subprogramID uint) (models.EnrollmentHistory, error) {
	var row models.EnrollmentHistory
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("subprogram_id = ?", subprogramID).
		Where("is_active = ?", true).
		Take(&row).Error; err != nil {
		return models.EnrollmentHistory{}, err
	}

	return row, nil
}

func (r *enrollmentRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.EnrollmentHistory, error) {
	var rows []models.EnrollmentHistory
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}
