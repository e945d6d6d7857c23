package grading

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AnswerMap holds a submission's answers keyed by stringified question
// index, exactly as persisted in the submission content column.
type AnswerMap map[string]interface{}

// ParseError signals that a submission payload could not be interpreted as
// an answer map. Callers downgrade the submission to ungraded instead of
// failing the write.
type ParseError struct {
	reason string
	cause  error
}

func (e *ParseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("unparseable answer payload: %s: %v", e.reason, e.cause)
	}
	return "unparseable answer payload: " + e.reason
}

func (e *ParseError) Unwrap() error {
	return e.cause
}

// ParseAnswers decodes raw submission content into an answer map. Empty
// content, non-JSON content and JSON that is not an object all return a
// *ParseError — never a fatal failure.
func ParseAnswers(content string) (AnswerMap, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, &ParseError{reason: "empty content"}
	}

	var answers AnswerMap
	if err := json.Unmarshal([]byte(trimmed), &answers); err != nil {
		return nil, &ParseError{reason: "invalid json", cause: err}
	}
	if answers == nil {
		return nil, &ParseError{reason: "json null payload"}
	}

	return answers, nil
}
