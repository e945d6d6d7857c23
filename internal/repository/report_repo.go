package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/bea-academy/academy-go-api/internal/models"
)

// ReportFilter narrows report aggregations by class or program.
type ReportFilter struct {
	ClassID   *uint
	ProgramID *uint
}

// KindStats aggregates one kind's assignment and submission activity.
type KindStats struct {
	Kind                 models.AssignmentKind `json:"kind"`
	TotalAssignments     int64                 `json:"total_assignments"`
	CompletedSubmissions int64                 `json:"completed_submissions"`
	TotalStudents        int64                 `json:"total_students"`
	AvgScore             float64               `json:"avg_score"`
}

// StudentAverage is one student's graded average across a kind.
type StudentAverage struct {
	StudentID   uint    `gorm:"column:student_id"`
	FullName    string  `gorm:"column:full_name"`
	AvgScore    float64 `gorm:"column:avg_score"`
	GradedCount int64   `gorm:"column:graded_count"`
}

// ReportRepository runs the read-only aggregations behind the stats and
// performance-cluster endpoints. It adds no invariants of its own; it reads
// the same tables the core writes.
type ReportRepository interface {
	KindStats(ctx context.Context, kind models.AssignmentKind, filter ReportFilter) (KindStats, error)
	StudentAverages(ctx context.Context, kind models.AssignmentKind, filter ReportFilter) ([]StudentAverage, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository constructs a repository backed by GORM.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) KindStats(ctx context.Context, kind models.AssignmentKind, filter ReportFilter) (KindStats, error) {
	def := kind.Table()
	sub := kind.SubmissionTable()

	row := struct {
		TotalAssignments     int64    `gorm:"column:total_assignments"`
		CompletedSubmissions int64    `gorm:"column:completed_submissions"`
		TotalStudents        int64    `gorm:"column:total_students"`
		AvgScore             *float64 `gorm:"column:avg_score"`
	}{}

	query := r.db.WithContext(ctx).Table(def+" AS a").
		Select("COUNT(DISTINCT a.id) AS total_assignments, "+
			"COUNT(DISTINCT CASE WHEN s.status IN ('submitted', 'graded') THEN s.id END) AS completed_submissions, "+
			"COUNT(DISTINCT s.student_id) AS total_students, "+
			"AVG(CASE WHEN s.status = 'graded' THEN s.score END) AS avg_score").
		Joins("LEFT JOIN "+sub+" s ON a.id = s.assignment_id").
		Where("a.status = ?", models.AssignmentStatusActive)

	if filter.ClassID != nil {
		query = query.Where("a.class_id = ?", *filter.ClassID)
	}
	if filter.ProgramID != nil {
		query = query.Where("a.program_id = ?", *filter.ProgramID)
	}

	if err := query.Scan(&row).Error; err != nil {
		return KindStats{}, err
	}

	stats := KindStats{
		Kind:                 kind,
		TotalAssignments:     row.TotalAssignments,
		CompletedSubmissions: row.CompletedSubmissions,
		TotalStudents:        row.TotalStudents,
	}
	if row.AvgScore != nil {
		stats.AvgScore = *row.AvgScore
	}

	return stats, nil
}

func (r *reportRepository) StudentAverages(ctx context.Context, kind models.AssignmentKind, filter ReportFilter) ([]StudentAverage, error) {
	def := kind.Table()
	sub := kind.SubmissionTable()

	query := r.db.WithContext(ctx).Table(sub+" AS s").
		Select("s.student_id AS student_id, students.full_name AS full_name, "+
			"AVG(s.score) AS avg_score, COUNT(s.id) AS graded_count").
		Joins("JOIN students ON students.id = s.student_id").
		Joins("JOIN "+def+" a ON a.id = s.assignment_id").
		Where("s.status = ?", models.SubmissionStatusGraded)

	if filter.ClassID != nil {
		query = query.Where("a.class_id = ?", *filter.ClassID)
	}
	if filter.ProgramID != nil {
		query = query.Where("a.program_id = ?", *filter.ProgramID)
	}

	var rows []StudentAverage
	if err := query.Group("s.student_id, students.full_name").Scan(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}
