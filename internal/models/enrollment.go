package models

import "time"

// EnrollmentHistory records which class a student occupies within an
// academic level. For a given (student_id, subprogram_id) at most one row is
// active at any time; rows are deactivated on a move, never deleted.
type EnrollmentHistory struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	StudentID    uint      `gorm:"not null;index:idx_enrollment_student_level,priority:1" json:"student_id"`
	ClassID      uint      `gorm:"not null;index" json:"class_id"`
	SubprogramID uint      `gorm:"not null;index:idx_enrollment_student_level,priority:2" json:"subprogram_id"`
	IsActive     bool      `gorm:"not null;default:false" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
