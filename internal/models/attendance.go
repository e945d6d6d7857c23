package models

import "time"

// Attendance statuses recorded per class session.
const (
	AttendanceStatusPresent = "present"
	AttendanceStatusAbsent  = "absent"
	AttendanceStatusLate    = "late"
)

// Attendance is a single per-session attendance row. The migration
// procedure re-points these to the new class on a lateral move.
type Attendance struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudentID uint      `gorm:"not null;index" json:"student_id"`
	ClassID   uint      `gorm:"not null;index" json:"class_id"`
	Date      time.Time `gorm:"not null" json:"date"`
	Status    string    `gorm:"size:16;not null" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
