// Package grading implements the automatic evaluation of question-based
// submissions. It is pure computation: no I/O, no clock, no store access.
package grading

import (
	"strconv"
	"strings"

	"github.com/bea-academy/academy-go-api/internal/models"
)

// Result is the outcome of scoring one answer map against one question set.
// Score is the raw sum of awarded points; it is never normalized against
// the assignment's total_points.
type Result struct {
	Score    float64
	Gradable bool
}

// Grade scores the answers against the ordered question set. Questions with
// no resolvable correct value, answers of the wrong type and unknown
// question types all contribute zero without being errors. An empty
// question set yields Gradable=false.
func Grade(questions []models.Question, answers AnswerMap) Result {
	if len(questions) == 0 {
		return Result{Gradable: false}
	}

	var score float64
	for i, question := range questions {
		answer, ok := answers[strconv.Itoa(i)]
		if !ok {
			continue
		}

		correct, ok := question.CorrectValue()
		if !ok {
			continue
		}

		if answerMatches(question, answer, correct) {
			score += question.PointsOrDefault()
		}
	}

	return Result{Score: score, Gradable: true}
}

func answerMatches(question models.Question, answer interface{}, correct string) bool {
	given, ok := answer.(string)
	if !ok {
		// Strict equality: a non-string answer can never equal the
		// canonical string value.
		return false
	}

	switch question.Type {
	case models.QuestionTypeShortAnswer:
		return strings.EqualFold(strings.TrimSpace(given), strings.TrimSpace(correct))
	case models.QuestionTypeMCQ, models.QuestionTypeTrueFalse, "":
		return given == correct
	default:
		return false
	}
}
