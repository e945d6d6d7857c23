package models

import "time"

// Submission workflow states.
const (
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusGraded    = "graded"
)

// Submission is one student's answer to one assignment. Each kind has its
// own submission table sharing this schema. Every submission table carries a
// unique key on (assignment_id, student_id) — created in database.AutoMigrate
// because the index name must differ per table — and every write path relies
// on it.
type Submission struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	AssignmentID    uint       `gorm:"not null;index" json:"assignment_id"`
	StudentID       uint       `gorm:"not null;index" json:"student_id"`
	Content         string     `gorm:"type:text" json:"content"`
	FileURL         *string    `gorm:"size:512" json:"file_url"`
	Score           *float64   `gorm:"type:decimal(5,2)" json:"score"`
	Status          string     `gorm:"size:32;not null;default:submitted" json:"status"`
	Feedback        *string    `gorm:"type:text" json:"feedback"`
	FeedbackFileURL *string    `gorm:"size:512" json:"feedback_file_url"`
	SubmissionDate  time.Time  `gorm:"not null" json:"submission_date"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// IsGraded reports whether the submission carries a final score.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}
