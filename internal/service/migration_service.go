package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/bea-academy/academy-go-api/internal/dto"
	"github.com/bea-academy/academy-go-api/internal/models"
	"github.com/bea-academy/academy-go-api/internal/observability"
	"github.com/bea-academy/academy-go-api/internal/repository"
)

// ErrClassNotFound indicates the destination class does not exist.
var ErrClassNotFound = errors.New("class not found")

// MigrationService moves a student between classes. A move within the same
// subprogram is lateral: submissions follow the student to matching
// assignments in the destination class and attendance is re-pointed. A move
// across subprograms is a promotion: the old level's work stays where it is
// as history. Either way the whole move commits or rolls back as one
// transaction.
type MigrationService interface {
	AssignClass(ctx context.Context, studentID, classID uint) (dto.MigrationSummary, error)
}

type migrationService struct {
	db     *gorm.DB
	logger zerolog.Logger
	tracer trace.Tracer
}

// NewMigrationService constructs the migration service. It holds the raw DB
// handle so every repository in a move shares one transaction.
func NewMigrationService(db *gorm.DB, logger zerolog.Logger) MigrationService {
	return &migrationService{
		db:     db,
		logger: logger.With().Str("component", "migration_service").Logger(),
		tracer: otel.Tracer("github.com/bea-academy/academy-go-api/internal/service/migration"),
	}
}

func (s *migrationService) AssignClass(ctx context.Context, studentID, classID uint) (dto.MigrationSummary, error) {
	ctx, span := s.tracer.Start(ctx, "migration.assign_class", trace.WithAttributes(
		attribute.Int64("migration.student_id", int64(studentID)),
		attribute.Int64("migration.class_id", int64(classID)),
	))
	defer span.End()

	start := time.Now()
	var summary dto.MigrationSummary

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		students := repository.NewStudentRepository(tx)
		classes := repository.NewClassRepository(tx)
		assignments := repository.NewAssignmentRepository(tx)
		submissions := repository.NewSubmissionRepository(tx)
		enrollments := repository.NewEnrollmentRepository(tx)
		attendance := repository.NewAttendanceRepository(tx)

		student, err := students.GetByID(ctx, studentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStudentNotFound
			}
			return err
		}

		class, err := classes.GetByID(ctx, classID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClassNotFound
			}
			return err
		}

		summary = dto.NewMigrationSummary(studentID, student.ClassID, classID)
		summary.SameSubprogram = student.SubprogramID != nil && *student.SubprogramID == class.SubprogramID

		isLateralMove := summary.SameSubprogram &&
			student.ClassID != nil && *student.ClassID != classID

		if isLateralMove {
			if err := s.migrateSubmissions(ctx, assignments, submissions, &summary, studentID, *student.ClassID, classID); err != nil {
				return err
			}

			moved, err := attendance.ReassignClass(ctx, studentID, *student.ClassID, classID)
			if err != nil {
				return err
			}
			summary.AttendanceMoved = moved
		}

		if _, err := enrollments.UpsertActive(ctx, studentID, classID, class.SubprogramID); err != nil {
			return err
		}
		retired, err := enrollments.DeactivateOthers(ctx, studentID, class.SubprogramID, classID)
		if err != nil {
			return err
		}
		summary.EnrollmentsRetired = retired

		subprogramID := class.SubprogramID
		return students.UpdatePlacement(ctx, studentID, &classID, &subprogramID)
	})
	if err != nil {
		observability.MigrationsTotal().WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "migration_failed")
		return dto.MigrationSummary{}, err
	}

	outcome := "promotion"
	if summary.SameSubprogram {
		outcome = "lateral"
	}
	observability.MigrationsTotal().WithLabelValues(outcome).Inc()

	s.logger.Info().
		Uint("student_id", studentID).
		Uint("class_id", classID).
		Str("outcome", outcome).
		Interface("migrated_by_kind", summary.MigratedByKind).
		Int("skipped_no_match", summary.SkippedNoMatch).
		Int("skipped_existing", summary.SkippedExisting).
		Int64("attendance_moved", summary.AttendanceMoved).
		Dur("took", time.Since(start)).
		Msg("student assigned to class")

	return summary, nil
}

// migrateSubmissions re-points the student's submissions from the old class
// onto same-titled assignments in the destination class, one kind at a time.
// A candidate without a matching destination assignment stays behind, and a
// destination that already holds a submission is never overwritten.
func (s *migrationService) migrateSubmissions(
	ctx context.Context,
	assignments repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
	summary *dto.MigrationSummary,
	studentID, oldClassID, newClassID uint,
) error {
	for _, kind := range models.AllKinds() {
		candidates, err := submissions.ListMigrationCandidates(ctx, kind, studentID, oldClassID)
		if err != nil {
			return err
		}

		for _, candidate := range candidates {
			destination, err := assignments.FindByClassAndTitle(ctx, kind, newClassID, candidate.AssignmentTitle)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					summary.SkippedNoMatch++
					s.logger.Debug().
						Str("kind", kind.String()).
						Str("title", candidate.AssignmentTitle).
						Uint("student_id", studentID).
						Msg("no matching assignment in destination class, submission stays")
					continue
				}
				return err
			}

			exists, err := submissions.ExistsForAssignmentAndStudent(ctx, kind, destination.ID, studentID)
			if err != nil {
				return err
			}
			if exists {
				summary.SkippedExisting++
				continue
			}

			if err := submissions.RepointAssignment(ctx, kind, candidate.ID, destination.ID); err != nil {
				return err
			}
			summary.MigratedByKind[kind.String()]++
		}
	}

	return nil
}
