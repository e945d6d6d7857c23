package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/bea-academy/academy-go-api/internal/models"
)

// AttendanceRepository exposes the attendance operations this subsystem
// touches. Recording attendance itself belongs to the attendance service;
// migration only re-points rows between classes.
type AttendanceRepository interface {
	Create(ctx context.Context, attendance *models.Attendance) error
	ReassignClass(ctx context.Context, studentID, oldClassID, newClassID uint) (int64, error)
	ListByStudentAndClass(ctx context.Context, studentID, classID uint) ([]models.Attendance, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository constructs a repository backed by GORM.
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) Create(ctx context.Context, attendance *models.Attendance) error {
	return r.db.WithContext(ctx).Create(attendance).Error
}

func (r *attendanceRepository) ReassignClass(ctx context.Context, studentID, oldClassID, newClassID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Attendance{}).
		Where("student_id = ?", studentID).
		Where("class_id = ?", oldClassID).
		Update("class_id", newClassID)

	return result.RowsAffected, result.Error
}

func (r *attendanceRepository) ListByStudentAndClass(ctx context.Context, studentID, classID uint) ([]models.Attendance, error) {
	var rows []models.Attendance
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("class_id = ?", classID).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}
