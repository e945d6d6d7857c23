package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bea-academy/academy-go-api/internal/models"
)

// SubmissionFilter narrows cross-assignment submission listings.
type SubmissionFilter struct {
	ClassID   *uint
	ProgramID *uint
	StudentID *uint
	Status    *string
}

// SubmissionWithStudent joins a submission row with the submitting
// student's identity.
type SubmissionWithStudent struct {
	models.Submission `gorm:"embedded"`
	StudentName       string `gorm:"column:student_name" json:"student_name"`
	StudentEmail      string `gorm:"column:student_email" json:"student_email"`
}

// SubmissionDetail joins a submission with assignment, class and program
// metadata for kind-wide listings.
type SubmissionDetail struct {
	models.Submission `gorm:"embedded"`
	StudentName       string  `gorm:"column:student_name" json:"student_name"`
	AssignmentTitle   string  `gorm:"column:assignment_title" json:"assignment_title"`
	TotalPoints       float64 `gorm:"column:total_points" json:"total_points"`
	ClassID           uint    `gorm:"column:class_id" json:"class_id"`
	ClassName         string  `gorm:"column:class_name" json:"class_name"`
	ProgramName       string  `gorm:"column:program_name" json:"program_name"`
}

// MigrationCandidate pairs a submission with its assignment's title, the
// key used to locate the matching assignment in the destination class.
type MigrationCandidate struct {
	models.Submission `gorm:"embedded"`
	AssignmentTitle   string `gorm:"column:assignment_title"`
}

// SubmissionRepository defines data operations for per-kind submissions.
type SubmissionRepository interface {
	Upsert(ctx context.Context, kind models.AssignmentKind, submission *models.Submission) error
	GetByID(ctx context.Context, kind models.AssignmentKind, id uint) (models.Submission, error)
	GetByAssignmentAndStudent(ctx context.Context, kind models.AssignmentKind, assignmentID, studentID uint) (models.Submission, error)
	ExistsForAssignmentAndStudent(ctx context.Context, kind models.AssignmentKind, assignmentID, studentID uint) (bool, error)
	ListByAssignment(ctx context.Context, kind models.AssignmentKind, assignmentID uint) ([]SubmissionWithStudent, error)
	ListForKind(ctx context.Context, kind models.AssignmentKind, filter SubmissionFilter) ([]SubmissionDetail, error)
	ListMigrationCandidates(ctx context.Context, kind models.AssignmentKind, studentID, classID uint) ([]MigrationCandidate, error)
	RepointAssignment(ctx context.Context, kind models.AssignmentKind, submissionID, newAssignmentID uint) error
	Update(ctx context.Context, kind models.AssignmentKind, submission *models.Submission) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) table(ctx context.Context, kind models.AssignmentKind) *gorm.DB {
	return r.db.WithContext(ctx).Table(kind.SubmissionTable())
}

// Upsert writes the submission as a single atomic statement keyed by the
// (assignment_id, student_id) unique index. A conflicting row has its
// content, file, score, status and submission date overwritten; feedback
// columns are left alone — resubmission is never a grading event.
func (r *submissionRepository) Upsert(ctx context.Context, kind models.AssignmentKind, submission *models.Submission) error {
	return r.table(ctx, kind).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "assignment_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"content", "file_url", "score", "status", "submission_date", "updated_at",
		}),
	}).Create(submission).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, kind models.AssignmentKind, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.table(ctx, kind).Where("id = ?", id).Take(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) GetByAssignmentAndStudent(ctx context.Context, kind models.AssignmentKind, assignmentID, studentID uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.table(ctx, kind).
		Where("assignment_id = ?", assignmentID).
		Where("student_id = ?", studentID).
		Take(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) ExistsForAssignmentAndStudent(ctx context.Context, kind models.AssignmentKind, assignmentID, studentID uint) (bool, error) {
	_, err := r.GetByAssignmentAndStudent(ctx, kind, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *submissionRepository) ListByAssignment(ctx context.Context, kind models.AssignmentKind, assignmentID uint) ([]SubmissionWithStudent, error) {
	var rows []SubmissionWithStudent
	if err := r.table(ctx, kind).
		Select(kind.SubmissionTable()+".*, students.full_name AS student_name, students.email AS student_email").
		Joins("JOIN students ON students.id = "+kind.SubmissionTable()+".student_id").
		Where(kind.SubmissionTable()+".assignment_id = ?", assignmentID).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *submissionRepository) ListForKind(ctx context.Context, kind models.AssignmentKind, filter SubmissionFilter) ([]SubmissionDetail, error) {
	sub := kind.SubmissionTable()
	def := kind.Table()

	query := r.table(ctx, kind).
		Select(sub+".*, students.full_name AS student_name, a.title AS assignment_title, a.total_points AS total_points, a.class_id AS class_id, classes.name AS class_name, programs.title AS program_name").
		Joins("JOIN "+def+" a ON a.id = "+sub+".assignment_id").
		Joins("JOIN students ON students.id = "+sub+".student_id").
		Joins("LEFT JOIN classes ON classes.id = a.class_id").
		Joins("LEFT JOIN programs ON programs.id = a.program_id")

	if filter.ClassID != nil {
		query = query.Where("a.class_id = ?", *filter.ClassID)
	}
	if filter.ProgramID != nil {
		query = query.Where("a.program_id = ?", *filter.ProgramID)
	}
	if filter.StudentID != nil {
		query = query.Where(sub+".student_id = ?", *filter.StudentID)
	}
	if filter.Status != nil {
		query = query.Where(sub+".status = ?", *filter.Status)
	}

	var rows []SubmissionDetail
	if err := query.Order(sub + ".submission_date DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *submissionRepository) ListMigrationCandidates(ctx context.Context, kind models.AssignmentKind, studentID, classID uint) ([]MigrationCandidate, error) {
	sub := kind.SubmissionTable()

	var rows []MigrationCandidate
	if err := r.table(ctx, kind).
		Select(sub+".*, a.title AS assignment_title").
		Joins("JOIN "+kind.Table()+" a ON a.id = "+sub+".assignment_id").
		Where(sub+".student_id = ?", studentID).
		Where("a.class_id = ?", classID).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

// RepointAssignment moves a submission under another assignment of the same
// kind, preserving score, feedback and status untouched.
func (r *submissionRepository) RepointAssignment(ctx context.Context, kind models.AssignmentKind, submissionID, newAssignmentID uint) error {
	result := r.table(ctx, kind).
		Where("id = ?", submissionID).
		Update("assignment_id", newAssignmentID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *submissionRepository) Update(ctx context.Context, kind models.AssignmentKind, submission *models.Submission) error {
	return r.table(ctx, kind).Save(submission).Error
}
