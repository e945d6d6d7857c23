package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// Question types supported by the auto-grading engine. Anything else is
// stored untouched and contributes zero points when graded.
const (
	QuestionTypeMCQ         = "mcq"
	QuestionTypeTrueFalse   = "true_false"
	QuestionTypeShortAnswer = "short_answer"
)

// Question is a single entry of an assignment's ordered question set. The
// JSON field names are the persisted wire shape and must not change.
type Question struct {
	QuestionText  string   `json:"questionText"`
	Type          string   `json:"type,omitempty"`
	Options       []string `json:"options,omitempty"`
	CorrectOption *int     `json:"correctOption,omitempty"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
	Answer        string   `json:"answer,omitempty"`
	Points        float64  `json:"points,omitempty"`
}

// CorrectValue resolves the canonical correct answer for the question:
// options[correctOption] when both are present, otherwise the stored
// correctAnswer or answer string. The second return is false when no
// correct value can be resolved.
func (q Question) CorrectValue() (string, bool) {
	if q.CorrectOption != nil && len(q.Options) > 0 {
		idx := *q.CorrectOption
		if idx >= 0 && idx < len(q.Options) {
			return q.Options[idx], true
		}
		return "", false
	}
	if q.CorrectAnswer != "" {
		return q.CorrectAnswer, true
	}
	if q.Answer != "" {
		return q.Answer, true
	}
	return "", false
}

// PointsOrDefault returns the question's point value, defaulting to 1.
func (q Question) PointsOrDefault() float64 {
	if q.Points >= 1 {
		return q.Points
	}
	return 1
}

// EncodeQuestions serializes a question set into its JSON column form.
func EncodeQuestions(questions []Question) (datatypes.JSON, error) {
	if questions == nil {
		questions = []Question{}
	}
	data, err := json.Marshal(questions)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

// DecodeQuestions parses a JSON question column back into the typed set.
// A null or empty column decodes to an empty set.
func DecodeQuestions(data datatypes.JSON) ([]Question, error) {
	if len(data) == 0 {
		return []Question{}, nil
	}
	var questions []Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}
