package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bea-academy/academy-go-api/internal/dto"
	"github.com/bea-academy/academy-go-api/internal/models"
	"github.com/bea-academy/academy-go-api/internal/repository"
)

type fakeAssignmentRepo struct {
	rows    map[models.AssignmentKind]map[uint]models.Assignment
	nextID  uint
	deletes int
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	rows := make(map[models.AssignmentKind]map[uint]models.Assignment)
	for _, kind := range models.AllKinds() {
		rows[kind] = make(map[uint]models.Assignment)
	}
	return &fakeAssignmentRepo{rows: rows}
}

func (f *fakeAssignmentRepo) List(ctx context.Context, kind models.AssignmentKind, filter repository.AssignmentFilter) ([]models.Assignment, error) {
	var out []models.Assignment
	for _, row := range f.rows[kind] {
		if filter.ClassID != nil && row.ClassID != *filter.ClassID {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeAssignmentRepo) ListAllKinds(ctx context.Context, filter repository.AssignmentFilter) ([]models.TaggedAssignment, error) {
	var out []models.TaggedAssignment
	for _, kind := range models.AllKinds() {
		rows, _ := f.List(ctx, kind, filter)
		for _, row := range rows {
			out = append(out, models.TaggedAssignment{Kind: kind, Assignment: row})
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) GetByID(ctx context.Context, kind models.AssignmentKind, id uint) (models.Assignment, error) {
	row, ok := f.rows[kind][id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (f *fakeAssignmentRepo) FindByClassAndTitle(ctx context.Context, kind models.AssignmentKind, classID uint, title string) (models.Assignment, error) {
	for _, row := range f.rows[kind] {
		if row.ClassID == classID && row.Title == title {
			return row, nil
		}
	}
	return models.Assignment{}, gorm.ErrRecordNotFound
}

func (f *fakeAssignmentRepo) Create(ctx context.Context, kind models.AssignmentKind, assignment *models.Assignment) error {
	f.nextID++
	assignment.ID = f.nextID
	f.rows[kind][assignment.ID] = *assignment
	return nil
}

func (f *fakeAssignmentRepo) Update(ctx context.Context, kind models.AssignmentKind, assignment *models.Assignment) error {
	f.rows[kind][assignment.ID] = *assignment
	return nil
}

func (f *fakeAssignmentRepo) DeleteWithTombstone(ctx context.Context, kind models.AssignmentKind, id, deletedBy uint) error {
	if _, ok := f.rows[kind][id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.rows[kind], id)
	f.deletes++
	return nil
}

func newCatalogService(repo repository.AssignmentRepository) AssignmentCatalogService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewAssignmentCatalogService(repo, validate, testLogger())
}

func TestCatalogCreateNullsForeignKindFields(t *testing.T) {
	repo := newFakeAssignmentRepo()
	svc := newCatalogService(repo)

	wordCount := 500
	duration := 45
	format := "pdf"
	created, err := svc.Create(context.Background(), models.KindWritingTask, dto.AssignmentCreateRequest{
		Title:            "Describe your hometown",
		ClassID:          3,
		WordCount:        &wordCount,
		Duration:         &duration,
		SubmissionFormat: &format,
	}, 9)
	require.NoError(t, err)

	require.Equal(t, "writing_task", created.Kind)
	require.NotNil(t, created.WordCount)
	require.Equal(t, 500, *created.WordCount)
	require.Nil(t, created.Duration, "test-only field must not leak into a writing task")
	require.Nil(t, created.SubmissionFormat)
	require.Equal(t, uint(9), created.CreatedBy)
	require.Equal(t, models.AssignmentStatusActive, created.Status)
}

func TestCatalogCreateValidatesQuestionSchema(t *testing.T) {
	repo := newFakeAssignmentRepo()
	svc := newCatalogService(repo)

	_, err := svc.Create(context.Background(), models.KindTest, dto.AssignmentCreateRequest{
		Title:     "Broken Quiz",
		ClassID:   3,
		Questions: json.RawMessage(`[{"points": 2}]`),
	}, 1)
	require.ErrorIs(t, err, ErrInvalidQuestionSet)

	created, err := svc.Create(context.Background(), models.KindTest, dto.AssignmentCreateRequest{
		Title:     "Working Quiz",
		ClassID:   3,
		Questions: json.RawMessage(`[{"questionText":"2+2?","type":"mcq","options":["3","4"],"correctOption":1,"points":2}]`),
	}, 1)
	require.NoError(t, err)
	require.Len(t, created.Questions, 1)
	require.Equal(t, "2+2?", created.Questions[0].QuestionText)
}

func TestCatalogCreateRejectsUnknownKind(t *testing.T) {
	svc := newCatalogService(newFakeAssignmentRepo())

	_, err := svc.Create(context.Background(), models.AssignmentKind("homework"), dto.AssignmentCreateRequest{
		Title:   "Anything",
		ClassID: 1,
	}, 1)
	require.ErrorIs(t, err, models.ErrInvalidKind)
}

func TestCatalogListUnionTagsKinds(t *testing.T) {
	repo := newFakeAssignmentRepo()
	svc := newCatalogService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, models.KindWritingTask, dto.AssignmentCreateRequest{Title: "Essay", ClassID: 1}, 1)
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.KindOralAssignment, dto.AssignmentCreateRequest{Title: "Speech", ClassID: 1}, 1)
	require.NoError(t, err)

	all, err := svc.List(ctx, dto.AssignmentListRequest{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	kinds := map[string]bool{}
	for _, row := range all {
		kinds[row.Kind] = true
	}
	require.True(t, kinds["writing_task"])
	require.True(t, kinds["oral_assignment"])

	_, err = svc.List(ctx, dto.AssignmentListRequest{Kind: "homework"})
	require.ErrorIs(t, err, models.ErrInvalidKind)
}

func TestCatalogDeleteMissingAssignment(t *testing.T) {
	svc := newCatalogService(newFakeAssignmentRepo())

	err := svc.Delete(context.Background(), models.KindTest, 99, 1)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestCatalogCloseBlocksThenReopen(t *testing.T) {
	repo := newFakeAssignmentRepo()
	svc := newCatalogService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.KindCourseWork, dto.AssignmentCreateRequest{Title: "Unit Project", ClassID: 2}, 1)
	require.NoError(t, err)

	closed, err := svc.Close(ctx, models.KindCourseWork, created.ID)
	require.NoError(t, err)
	require.Equal(t, models.AssignmentStatusClosed, closed.Status)

	reopened, err := svc.Reopen(ctx, models.KindCourseWork, created.ID)
	require.NoError(t, err)
	require.Equal(t, models.AssignmentStatusActive, reopened.Status)
}
