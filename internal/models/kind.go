package models

import (
	"errors"
	"strings"
)

// ErrInvalidKind indicates an assignment kind outside the supported set.
var ErrInvalidKind = errors.New("unsupported assignment kind")

// AssignmentKind identifies one of the four assignment shapes. Each kind is
// backed by its own definition table and its own submission table; the two
// are never mixed in a single query except through an explicit union.
type AssignmentKind string

const (
	KindWritingTask    AssignmentKind = "writing_task"
	KindTest           AssignmentKind = "test"
	KindOralAssignment AssignmentKind = "oral_assignment"
	KindCourseWork     AssignmentKind = "course_work"
)

type kindTables struct {
	definitions string
	submissions string
}

var kindTableSet = map[AssignmentKind]kindTables{
	KindWritingTask:    {definitions: "writing_tasks", submissions: "writing_task_submissions"},
	KindTest:           {definitions: "tests", submissions: "test_submissions"},
	KindOralAssignment: {definitions: "oral_assignments", submissions: "oral_assignment_submissions"},
	KindCourseWork:     {definitions: "course_work", submissions: "course_work_submissions"},
}

// ParseKind validates a raw kind string and returns the typed kind.
func ParseKind(value string) (AssignmentKind, error) {
	kind := AssignmentKind(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := kindTableSet[kind]; !ok {
		return "", ErrInvalidKind
	}
	return kind, nil
}

// AllKinds returns the supported kinds in a stable order.
func AllKinds() []AssignmentKind {
	return []AssignmentKind{KindWritingTask, KindTest, KindOralAssignment, KindCourseWork}
}

// Valid reports whether the kind belongs to the supported set.
func (k AssignmentKind) Valid() bool {
	_, ok := kindTableSet[k]
	return ok
}

// Table returns the definition table backing this kind.
func (k AssignmentKind) Table() string {
	return kindTableSet[k].definitions
}

// SubmissionTable returns the submission table backing this kind.
func (k AssignmentKind) SubmissionTable() string {
	return kindTableSet[k].submissions
}

// AutoGradable reports whether submissions of this kind are scored inline
// when the assignment carries a question set.
func (k AssignmentKind) AutoGradable() bool {
	return k == KindTest || k == KindCourseWork
}

// HasQuestions reports whether definitions of this kind carry a question set.
func (k AssignmentKind) HasQuestions() bool {
	return k == KindTest || k == KindOralAssignment || k == KindCourseWork
}

func (k AssignmentKind) String() string {
	return string(k)
}
