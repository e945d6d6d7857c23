package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bea-academy/academy-go-api/internal/dto"
	"github.com/bea-academy/academy-go-api/internal/models"
	"github.com/bea-academy/academy-go-api/internal/repository"
)

type submissionKey struct {
	kind         models.AssignmentKind
	assignmentID uint
	studentID    uint
}

type fakeSubmissionRepo struct {
	rows   map[submissionKey]models.Submission
	nextID uint
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{rows: make(map[submissionKey]models.Submission)}
}

func (f *fakeSubmissionRepo) Upsert(ctx context.Context, kind models.AssignmentKind, submission *models.Submission) error {
	key := submissionKey{kind: kind, assignmentID: submission.AssignmentID, studentID: submission.StudentID}
	if existing, ok := f.rows[key]; ok {
		existing.Content = submission.Content
		existing.FileURL = submission.FileURL
		existing.Score = submission.Score
		existing.Status = submission.Status
		existing.SubmissionDate = submission.SubmissionDate
		f.rows[key] = existing
		*submission = existing
		return nil
	}
	f.nextID++
	submission.ID = f.nextID
	f.rows[key] = *submission
	return nil
}

func (f *fakeSubmissionRepo) GetByID(ctx context.Context, kind models.AssignmentKind, id uint) (models.Submission, error) {
	for key, row := range f.rows {
		if key.kind == kind && row.ID == id {
			return row, nil
		}
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (f *fakeSubmissionRepo) GetByAssignmentAndStudent(ctx context.Context, kind models.AssignmentKind, assignmentID, studentID uint) (models.Submission, error) {
	row, ok := f.rows[submissionKey{kind: kind, assignmentID: assignmentID, studentID: studentID}]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (f *fakeSubmissionRepo) ExistsForAssignmentAndStudent(ctx context.Context, kind models.AssignmentKind, assignmentID, studentID uint) (bool, error) {
	_, ok := f.rows[submissionKey{kind: kind, assignmentID: assignmentID, studentID: studentID}]
	return ok, nil
}

func (f *fakeSubmissionRepo) ListByAssignment(ctx context.Context, kind models.AssignmentKind, assignmentID uint) ([]repository.SubmissionWithStudent, error) {
	return nil, nil
}

func (f *fakeSubmissionRepo) ListForKind(ctx context.Context, kind models.AssignmentKind, filter repository.SubmissionFilter) ([]repository.SubmissionDetail, error) {
	return nil, nil
}

func (f *fakeSubmissionRepo) ListMigrationCandidates(ctx context.Context, kind models.AssignmentKind, studentID, classID uint) ([]repository.MigrationCandidate, error) {
	return nil, nil
}

func (f *fakeSubmissionRepo) RepointAssignment(ctx context.Context, kind models.AssignmentKind, submissionID, newAssignmentID uint) error {
	return nil
}

func (f *fakeSubmissionRepo) Update(ctx context.Context, kind models.AssignmentKind, submission *models.Submission) error {
	for key, row := range f.rows {
		if key.kind == kind && row.ID == submission.ID {
			f.rows[key] = *submission
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeStudentRepo struct {
	students map[uint]models.Student
}

func (f *fakeStudentRepo) GetByID(ctx context.Context, id uint) (models.Student, error) {
	student, ok := f.students[id]
	if !ok {
		return models.Student{}, gorm.ErrRecordNotFound
	}
	return student, nil
}

func (f *fakeStudentRepo) Create(ctx context.Context, student *models.Student) error {
	f.students[student.ID] = *student
	return nil
}

func (f *fakeStudentRepo) UpdatePlacement(ctx context.Context, id uint, classID, subprogramID *uint) error {
	student, ok := f.students[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	student.ClassID = classID
	student.SubprogramID = subprogramID
	f.students[id] = student
	return nil
}

func quizAssignment(t *testing.T, repo *fakeAssignmentRepo, kind models.AssignmentKind, status string) models.Assignment {
	t.Helper()
	questions, err := models.EncodeQuestions([]models.Question{
		{QuestionText: "Capital of France?", Type: models.QuestionTypeMCQ, Options: []string{"Paris", "Rome"}, CorrectOption: intPtr(0), Points: 2},
		{QuestionText: "The sky is blue.", Type: models.QuestionTypeTrueFalse, Answer: "true", Points: 1},
	})
	require.NoError(t, err)

	assignment := models.Assignment{Title: "Quiz", ClassID: 1, Status: status, CreatedBy: 1, Questions: questions}
	require.NoError(t, repo.Create(context.Background(), kind, &assignment))
	return assignment
}

func intPtr(v int) *int { return &v }

func newSubmissionServiceForTest(assignments *fakeAssignmentRepo, submissions *fakeSubmissionRepo) SubmissionService {
	students := &fakeStudentRepo{students: map[uint]models.Student{
		5: {ID: 5, FullName: "Ayaan Warsame", Email: "ayaan@example.com"},
	}}
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewSubmissionService(submissions, assignments, students, validate, nil, 10, testLogger())
}

func TestSubmitRejectsClosedAssignment(t *testing.T) {
	assignments := newFakeAssignmentRepo()
	submissions := newFakeSubmissionRepo()
	svc := newSubmissionServiceForTest(assignments, submissions)

	assignment := quizAssignment(t, assignments, models.KindTest, models.AssignmentStatusClosed)

	_, err := svc.Submit(context.Background(), models.KindTest, dto.SubmitRequest{
		AssignmentID: assignment.ID,
		StudentID:    5,
		Content:      `{"0":"Paris"}`,
	}, nil)
	require.ErrorIs(t, err, ErrAssignmentClosed)
	require.Empty(t, submissions.rows)
}

func TestSubmitRejectsUnknownStudent(t *testing.T) {
	assignments := newFakeAssignmentRepo()
	submissions := newFakeSubmissionRepo()
	svc := newSubmissionServiceForTest(assignments, submissions)

	assignment := quizAssignment(t, assignments, models.KindTest, models.AssignmentStatusActive)

	_, err := svc.Submit(context.Background(), models.KindTest, dto.SubmitRequest{
		AssignmentID: assignment.ID,
		StudentID:    404,
		Content:      `{"0":"Paris"}`,
	}, nil)
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestSubmitAutoGradesTestKind(t *testing.T) {
	assignments := newFakeAssignmentRepo()
	submissions := newFakeSubmissionRepo()
	svc := newSubmissionServiceForTest(assignments, submissions)

	assignment := quizAssignment(t, assignments, models.KindTest, models.AssignmentStatusActive)

	result, err := svc.Submit(context.Background(), models.KindTest, dto.SubmitRequest{
		AssignmentID: assignment.ID,
		StudentID:    5,
		Content:      `{"0":"Paris","1":"false"}`,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusGraded, result.Status)
	require.NotNil(t, result.Score)
	require.InDelta(t, 2.0, *result.Score, 1e-9, "only the first question is correct")
}

func TestSubmitStoresUngradedWhenAnswersMalformed(t *testing.T) {
	assignments := newFakeAssignmentRepo()
	submissions := newFakeSubmissionRepo()
	svc := newSubmissionServiceForTest(assignments, submissions)

	assignment := quizAssignment(t, assignments, models.KindTest, models.AssignmentStatusActive)

	result, err := svc.Submit(context.Background(), models.KindTest, dto.SubmitRequest{
		AssignmentID: assignment.ID,
		StudentID:    5,
		Content:      "not json at all",
	}, nil)
	require.NoError(t, err, "a malformed answer payload must not block the submit")
	require.Equal(t, models.SubmissionStatusSubmitted, result.Status)
	require.Nil(t, result.Score)
}

func TestSubmitNeverAutoGradesWritingTask(t *testing.T) {
	assignments := newFakeAssignmentRepo()
	submissions := newFakeSubmissionRepo()
	svc := newSubmissionServiceForTest(assignments, submissions)

	assignment := models.Assignment{Title: "Essay", ClassID: 1, Status: models.AssignmentStatusActive, CreatedBy: 1}
	require.NoError(t, assignments.Create(context.Background(), models.KindWritingTask, &assignment))

	result, err := svc.Submit(context.Background(), models.KindWritingTask, dto.SubmitRequest{
		AssignmentID: assignment.ID,
		StudentID:    5,
		Content:      "My essay text.",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusSubmitted, result.Status)
	require.Nil(t, result.Score)
}

func TestSubmitResubmissionResetsGradeKeepsFeedback(t *testing.T) {
	assignments := newFakeAssignmentRepo()
	submissions := newFakeSubmissionRepo()
	svc := newSubmissionServiceForTest(assignments, submissions)

	assignment := models.Assignment{Title: "Essay", ClassID: 1, Status: models.AssignmentStatusActive, CreatedBy: 1}
	require.NoError(t, assignments.Create(context.Background(), models.KindWritingTask, &assignment))

	first, err := svc.Submit(context.Background(), models.KindWritingTask, dto.SubmitRequest{
		AssignmentID: assignment.ID,
		StudentID:    5,
		Content:      "first draft",
	}, nil)
	require.NoError(t, err)

	// A teacher grades it out of band.
	key := submissionKey{kind: models.KindWritingTask, assignmentID: assignment.ID, studentID: 5}
	graded := submissions.rows[key]
	score := 70.0
	feedback := "solid start"
	graded.Score = &score
	graded.Feedback = &feedback
	graded.Status = models.SubmissionStatusGraded
	submissions.rows[key] = graded

	second, err := svc.Submit(context.Background(), models.KindWritingTask, dto.SubmitRequest{
		AssignmentID: assignment.ID,
		StudentID:    5,
		Content:      "second draft",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID, "resubmission must reuse the row")
	require.Equal(t, "second draft", second.Content)
	require.Equal(t, models.SubmissionStatusSubmitted, second.Status)
	require.Nil(t, second.Score, "resubmission resets the grade")
	require.NotNil(t, second.Feedback, "feedback survives resubmission")
	require.True(t, second.SubmissionDate.Before(time.Now().Add(time.Second)))
}
