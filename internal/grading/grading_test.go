package grading

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bea-academy/academy-go-api/internal/models"
)

func intPtr(v int) *int {
	return &v
}

func TestGradeMCQCorrectOption(t *testing.T) {
	questions := []models.Question{
		{
			QuestionText:  "Pick the second letter",
			Type:          models.QuestionTypeMCQ,
			Options:       []string{"A", "B", "C"},
			CorrectOption: intPtr(1),
			Points:        2,
		},
	}

	result := Grade(questions, AnswerMap{"0": "B"})
	require.True(t, result.Gradable)
	require.Equal(t, 2.0, result.Score)

	result = Grade(questions, AnswerMap{"0": "A"})
	require.True(t, result.Gradable)
	require.Equal(t, 0.0, result.Score)
}

func TestGradeShortAnswerIsCaseAndWhitespaceInsensitive(t *testing.T) {
	questions := []models.Question{
		{
			QuestionText:  "Capital of France",
			Type:          models.QuestionTypeShortAnswer,
			CorrectAnswer: " Paris ",
			Points:        3,
		},
	}

	result := Grade(questions, AnswerMap{"0": "paris"})
	require.True(t, result.Gradable)
	require.Equal(t, 3.0, result.Score)
}

func TestGradeDefaultsTypeAndPoints(t *testing.T) {
	// Absent type behaves like mcq, absent points default to 1.
	questions := []models.Question{
		{QuestionText: "True or false", Options: []string{"true", "false"}, CorrectOption: intPtr(0)},
		{QuestionText: "Free text", Answer: "forty-two"},
	}

	result := Grade(questions, AnswerMap{"0": "true", "1": "forty-two"})
	require.True(t, result.Gradable)
	require.Equal(t, 2.0, result.Score)
}

func TestGradeUnknownTypeContributesZero(t *testing.T) {
	questions := []models.Question{
		{QuestionText: "Essay", Type: "essay", CorrectAnswer: "anything", Points: 10},
		{QuestionText: "MCQ", Type: models.QuestionTypeMCQ, Options: []string{"x", "y"}, CorrectOption: intPtr(1), Points: 1},
	}

	result := Grade(questions, AnswerMap{"0": "anything", "1": "y"})
	require.True(t, result.Gradable)
	require.Equal(t, 1.0, result.Score)
}

func TestGradeMissingAndMistypedAnswers(t *testing.T) {
	questions := []models.Question{
		{QuestionText: "Q1", Type: models.QuestionTypeMCQ, Options: []string{"1", "2"}, CorrectOption: intPtr(0), Points: 5},
		{QuestionText: "Q2", Type: models.QuestionTypeTrueFalse, CorrectAnswer: "true", Points: 5},
	}

	// Answer 0 missing, answer 1 is a JSON boolean: strict equality never
	// matches a non-string against the canonical string value.
	result := Grade(questions, AnswerMap{"1": true})
	require.True(t, result.Gradable)
	require.Equal(t, 0.0, result.Score)
}

func TestGradeEmptyQuestionSetNotGradable(t *testing.T) {
	result := Grade(nil, AnswerMap{"0": "A"})
	require.False(t, result.Gradable)
	require.Equal(t, 0.0, result.Score)
}

func TestGradeOutOfRangeCorrectOption(t *testing.T) {
	questions := []models.Question{
		{QuestionText: "Broken", Type: models.QuestionTypeMCQ, Options: []string{"A"}, CorrectOption: intPtr(7), Points: 4},
	}

	result := Grade(questions, AnswerMap{"0": "A"})
	require.True(t, result.Gradable)
	require.Equal(t, 0.0, result.Score)
}

func TestParseAnswers(t *testing.T) {
	answers, err := ParseAnswers(`{"0":"B","1":"true"}`)
	require.NoError(t, err)
	require.Equal(t, "B", answers["0"])

	_, err = ParseAnswers("plain essay text, not json")
	require.Error(t, err)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)

	_, err = ParseAnswers("")
	require.ErrorAs(t, err, &parseErr)

	_, err = ParseAnswers(`["a","b"]`)
	require.ErrorAs(t, err, &parseErr)

	_, err = ParseAnswers("null")
	require.ErrorAs(t, err, &parseErr)
}
