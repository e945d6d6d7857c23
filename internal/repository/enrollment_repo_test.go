package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bea-academy/academy-go-api/internal/models"
)

func TestEnrollmentSingleActivePerLevel(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEnrollmentRepository(db)
	ctx := context.Background()

	studentID := uint(7001)
	subprogramID := uint(3)

	_, err := repo.UpsertActive(ctx, studentID, 10, subprogramID)
	require.NoError(t, err)

	_, err = repo.UpsertActive(ctx, studentID, 11, subprogramID)
	require.NoError(t, err)
	deactivated, err := repo.DeactivateOthers(ctx, studentID, subprogramID, 11)
	require.NoError(t, err)
	require.Equal(t, int64(1), deactivated)

	active, err := repo.GetActive(ctx, studentID, subprogramID)
	require.NoError(t, err)
	require.Equal(t, uint(11), active.ClassID)

	var activeCount int64
	require.NoError(t, db.Model(&models.EnrollmentHistory{}).
		Where("student_id = ? AND subprogram_id = ? AND is_active = ?", studentID, subprogramID, true).
		Count(&activeCount).Error)
	require.Equal(t, int64(1), activeCount)
}

func TestEnrollmentDeactivationLeavesOtherLevelsAlone(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEnrollmentRepository(db)
	ctx := context.Background()

	studentID := uint(7002)

	_, err := repo.UpsertActive(ctx, studentID, 20, 1)
	require.NoError(t, err)
	_, err = repo.UpsertActive(ctx, studentID, 30, 2)
	require.NoError(t, err)

	_, err = repo.DeactivateOthers(ctx, studentID, 2, 30)
	require.NoError(t, err)

	// The level-1 row is untouched by level-2 housekeeping.
	active, err := repo.GetActive(ctx, studentID, 1)
	require.NoError(t, err)
	require.Equal(t, uint(20), active.ClassID)
}

func TestEnrollmentUpsertReactivatesExistingRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEnrollmentRepository(db)
	ctx := context.Background()

	studentID := uint(7003)

	first, err := repo.UpsertActive(ctx, studentID, 40, 5)
	require.NoError(t, err)

	_, err = repo.DeactivateOthers(ctx, studentID, 5, 41)
	require.NoError(t, err)

	again, err := repo.UpsertActive(ctx, studentID, 40, 5)
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID, "moving back must reuse the history row")
	require.True(t, again.IsActive)

	rows, err := repo.ListByStudent(ctx, studentID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
