package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bea-academy/academy-go-api/internal/models"
)

func TestAssignmentListAllKindsTagsAndSorts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)
	ctx := context.Background()

	classID := uint(901)
	older := models.Assignment{Title: "Older Writing", ClassID: classID, Status: models.AssignmentStatusActive, CreatedBy: 1, CreatedAt: time.Now().Add(-2 * time.Hour)}
	newer := models.Assignment{Title: "Newer Test", ClassID: classID, Status: models.AssignmentStatusActive, CreatedBy: 1, CreatedAt: time.Now().Add(-1 * time.Hour)}
	require.NoError(t, db.Table(models.KindWritingTask.Table()).Create(&older).Error)
	require.NoError(t, db.Table(models.KindTest.Table()).Create(&newer).Error)

	union, err := repo.ListAllKinds(ctx, AssignmentFilter{ClassID: &classID})
	require.NoError(t, err)
	require.Len(t, union, 2)
	require.Equal(t, models.KindTest, union[0].Kind, "expected newest first")
	require.Equal(t, "Newer Test", union[0].Title)
	require.Equal(t, models.KindWritingTask, union[1].Kind)
}

func TestAssignmentFindByClassAndTitle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)
	ctx := context.Background()

	seedAssignment(t, db, models.KindTest, "Midterm", 31)
	destination := seedAssignment(t, db, models.KindTest, "Midterm", 32)

	found, err := repo.FindByClassAndTitle(ctx, models.KindTest, 32, "Midterm")
	require.NoError(t, err)
	require.Equal(t, destination.ID, found.ID)

	_, err = repo.FindByClassAndTitle(ctx, models.KindTest, 33, "Midterm")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAssignmentDeleteWritesTombstoneAndKeepsSubmissions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)
	submissions := NewSubmissionRepository(db)
	ctx := context.Background()

	student := seedStudent(t, db, "Liban Dahir", "liban@example.com")
	assignment := seedAssignment(t, db, models.KindOralAssignment, "Speaking Drill", 41)

	require.NoError(t, submissions.Upsert(ctx, models.KindOralAssignment, &models.Submission{
		AssignmentID:   assignment.ID,
		StudentID:      student.ID,
		Content:        "recording.mp3 notes",
		Status:         models.SubmissionStatusSubmitted,
		SubmissionDate: time.Now(),
	}))

	require.NoError(t, repo.DeleteWithTombstone(ctx, models.KindOralAssignment, assignment.ID, 7))

	_, err := repo.GetByID(ctx, models.KindOralAssignment, assignment.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// The submission survives as an orphan; the tombstone explains it.
	exists, err := submissions.ExistsForAssignmentAndStudent(ctx, models.KindOralAssignment, assignment.ID, student.ID)
	require.NoError(t, err)
	require.True(t, exists)

	var tombstone models.DeletedAssignment
	require.NoError(t, db.Where("kind = ? AND assignment_id = ?", models.KindOralAssignment, assignment.ID).Take(&tombstone).Error)
	require.Equal(t, "Speaking Drill", tombstone.Title)
	require.Equal(t, uint(7), tombstone.DeletedBy)
}
