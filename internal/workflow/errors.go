package workflow

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrorCategory classifies terminal run failures surfaced to callers.
type ErrorCategory string

// Failure categories. Low scores and repaired fields are not failures and
// never appear here.
const (
	// CategoryGeneration covers provider-side failures: network, auth,
	// rate limits, timeouts.
	CategoryGeneration ErrorCategory = "generation_error"
	// CategoryEvaluationParse covers evaluator output that could not be
	// parsed into a score and feedback. Deliberately not repaired: a
	// guessed score would corrupt the revision decision.
	CategoryEvaluationParse ErrorCategory = "evaluation_parse_error"
	// CategoryMalformedStructure covers structured responses that are not
	// even a parseable mapping/list tree. The repair layer does not
	// recover from this class.
	CategoryMalformedStructure ErrorCategory = "malformed_structure"
)

// RunError is the serializable failure info attached to a failed run.
type RunError struct {
	Category ErrorCategory `json:"category"`
	Message  string        `json:"message"`
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// StepError lets a step implementation attach an explicit failure category
// to an error it returns to the engine.
type StepError struct {
	Cat ErrorCategory
	Err error
}

func (e *StepError) Error() string {
	return e.Err.Error()
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// EvaluationParseError indicates the evaluator call succeeded but its output
// could not be parsed into the expected evaluation shape.
type EvaluationParseError struct {
	Content string
	Cause   error
}

func (e *EvaluationParseError) Error() string {
	return fmt.Sprintf("failed to parse evaluation: %v (content: %s)", e.Cause, e.Content)
}

func (e *EvaluationParseError) Unwrap() error {
	return e.Cause
}

// ErrRunNotFound indicates an unknown run id.
type ErrRunNotFound struct {
	RunID uuid.UUID
}

func (e *ErrRunNotFound) Error() string {
	return fmt.Sprintf("run not found: %s", e.RunID)
}

// categorize maps a step error to the RunError recorded on the snapshot.
func categorize(err error, fallback ErrorCategory) *RunError {
	var se *StepError
	if errors.As(err, &se) {
		return &RunError{Category: se.Cat, Message: se.Err.Error()}
	}
	var pe *EvaluationParseError
	if errors.As(err, &pe) {
		return &RunError{Category: CategoryEvaluationParse, Message: pe.Error()}
	}
	return &RunError{Category: fallback, Message: err.Error()}
}
