package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/bea-academy/academy-go-api/internal/models"
)

// AutoMigrate creates the shared tables plus one definition table and one
// submission table per assignment kind. Each submission table gets a unique
// key on (assignment_id, student_id); the atomic upsert depends on it.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Student{},
		&models.Class{},
		&models.Program{},
		&models.EnrollmentHistory{},
		&models.Attendance{},
		&models.Notification{},
		&models.DeletedAssignment{},
	); err != nil {
		return fmt.Errorf("failed to migrate shared tables: %w", err)
	}

	for _, kind := range models.AllKinds() {
		if err := db.Table(kind.Table()).AutoMigrate(&models.Assignment{}); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", kind.Table(), err)
		}
		if err := db.Table(kind.SubmissionTable()).AutoMigrate(&models.Submission{}); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", kind.SubmissionTable(), err)
		}

		index := fmt.Sprintf(
			"CREATE UNIQUE INDEX IF NOT EXISTS uniq_%s_assignment_student ON %s (assignment_id, student_id)",
			kind.SubmissionTable(), kind.SubmissionTable(),
		)
		if err := db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create unique submission index for %s: %w", kind, err)
		}
	}

	return nil
}
