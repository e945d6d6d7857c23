package dto

import "github.com/bea-academy/academy-go-api/internal/models"

// AssignClassRequest moves a student into a class. The migration service
// decides from the class's subprogram whether history follows.
type AssignClassRequest struct {
	ClassID uint `json:"class_id" validate:"required,gt=0"`
}

// MigrationSummary reports what one class assignment actually did, for
// operator visibility and for the response envelope.
type MigrationSummary struct {
	StudentID          uint           `json:"student_id"`
	FromClassID        *uint          `json:"from_class_id"`
	ToClassID          uint           `json:"to_class_id"`
	SameSubprogram     bool           `json:"same_subprogram"`
	MigratedByKind     map[string]int `json:"migrated_by_kind"`
	SkippedNoMatch     int            `json:"skipped_no_match"`
	SkippedExisting    int            `json:"skipped_existing"`
	AttendanceMoved    int64          `json:"attendance_moved"`
	EnrollmentsRetired int64          `json:"enrollments_retired"`
}

// NewMigrationSummary initialises the per-kind counters so the response
// always lists every kind, including zero rows moved.
func NewMigrationSummary(studentID uint, fromClassID *uint, toClassID uint) MigrationSummary {
	byKind := make(map[string]int, len(models.AllKinds()))
	for _, kind := range models.AllKinds() {
		byKind[kind.String()] = 0
	}

	return MigrationSummary{
		StudentID:      studentID,
		FromClassID:    fromClassID,
		ToClassID:      toClassID,
		MigratedByKind: byKind,
	}
}
