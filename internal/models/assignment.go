package models

import (
	"time"

	"gorm.io/datatypes"
)

// Assignment lifecycle states.
const (
	AssignmentStatusActive   = "active"
	AssignmentStatusClosed   = "closed"
	AssignmentStatusInactive = "inactive"
)

// Assignment is the shared definition schema across all four kinds. The
// kind-specific columns are nullable; only the columns matching the owning
// kind carry values, the rest stay NULL. Identity is (kind, id) — the struct
// never persists on its own, repositories bind it to a kind's table.
type Assignment struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	ClassID     uint           `gorm:"not null;index" json:"class_id"`
	ProgramID   *uint          `gorm:"index" json:"program_id"`
	DueDate     *time.Time     `json:"due_date"`
	TotalPoints float64        `gorm:"not null;default:0" json:"total_points"`
	Status      string         `gorm:"size:16;not null;default:active" json:"status"`
	CreatedBy   uint           `gorm:"not null;index" json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	// writing_task
	WordCount    *int    `json:"word_count,omitempty"`
	Requirements *string `gorm:"type:text" json:"requirements,omitempty"`

	// test / oral_assignment
	Duration *int `json:"duration,omitempty"`

	// course_work
	SubmissionFormat *string `gorm:"size:100" json:"submission_format,omitempty"`
	SubprogramID     *uint   `json:"subprogram_id,omitempty"`
	Unit             *string `gorm:"size:100" json:"unit,omitempty"`

	// test / oral_assignment / course_work
	Questions datatypes.JSON `gorm:"type:json" json:"questions,omitempty"`
}

// IsClosed reports whether the assignment refuses new submissions.
func (a Assignment) IsClosed() bool {
	return a.Status == AssignmentStatusClosed
}

// QuestionSet decodes the stored question JSON into the typed set.
func (a Assignment) QuestionSet() ([]Question, error) {
	return DecodeQuestions(a.Questions)
}

// NullIrrelevantFields clears every kind-specific column that does not
// belong to the given kind, so a write for one kind can never leak fields
// from another.
func (a *Assignment) NullIrrelevantFields(kind AssignmentKind) {
	if kind != KindWritingTask {
		a.WordCount = nil
		a.Requirements = nil
	}
	if kind != KindTest && kind != KindOralAssignment {
		a.Duration = nil
	}
	if kind != KindCourseWork {
		a.SubmissionFormat = nil
		a.SubprogramID = nil
		a.Unit = nil
	}
	if !kind.HasQuestions() {
		a.Questions = nil
	}
}

// TaggedAssignment pairs an assignment row with its kind for union listings.
type TaggedAssignment struct {
	Kind       AssignmentKind `json:"kind"`
	Assignment `json:"assignment"`
}

// DeletedAssignment is the tombstone written when a definition is hard
// deleted. Submissions are never cascaded; the tombstone keeps orphaned
// rows interpretable for grade history.
type DeletedAssignment struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Kind         AssignmentKind `gorm:"size:32;not null;index" json:"kind"`
	AssignmentID uint           `gorm:"not null;index" json:"assignment_id"`
	Title        string         `gorm:"size:255;not null" json:"title"`
	ClassID      uint           `gorm:"not null" json:"class_id"`
	DeletedBy    uint           `gorm:"not null" json:"deleted_by"`
	CreatedAt    time.Time      `json:"created_at"`
}
