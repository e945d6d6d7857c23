package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/bea-academy/academy-go-api/internal/models"
)

// StudentRepository exposes the student lookups and placement writes the
// migration procedure needs.
type StudentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	UpdatePlacement(ctx context.Context, id uint, classID, subprogramID *uint) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a repository backed by GORM.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) UpdatePlacement(ctx context.Context, id uint, classID, subprogramID *uint) error {
	updates := map[string]interface{}{
		"class_id":      classID,
		"subprogram_id": subprogramID,
	}
	result := r.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
