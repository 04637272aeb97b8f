package domain

import (
	"errors"
	"fmt"
)

// Common domain errors that can occur while loading a catalog, decoding
// answers, or running a simulation.
var (
	// ErrInvalidConfiguration indicates that configuration is invalid or incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrPointsShape indicates that a question's points are a number where
	// its type expects an object, or the reverse.
	ErrPointsShape = errors.New("points shape does not match question type")

	// ErrDuplicateOption indicates that a question lists the same option twice.
	ErrDuplicateOption = errors.New("duplicate option")

	// ErrDuplicateQuestion indicates that two catalog entries share an id.
	ErrDuplicateQuestion = errors.New("duplicate question id")

	// ErrUnknownQuestion indicates that a question id is not in the catalog.
	ErrUnknownQuestion = errors.New("unknown question")

	// ErrAnswerShape indicates that an answer value cannot belong to the
	// question it is being encoded for.
	ErrAnswerShape = errors.New("answer shape does not match question type")

	// ErrEmptyRoster indicates that a simulation was requested without drivers.
	ErrEmptyRoster = errors.New("roster has no drivers")

	// ErrNoQuestions indicates that a simulation was requested with an empty catalog.
	ErrNoQuestions = errors.New("catalog has no questions")

	// ErrInvalidSimulation indicates out-of-range simulation parameters.
	ErrInvalidSimulation = errors.New("invalid simulation parameters")
)

// QuestionError ties an error to the catalog entry that caused it.
type QuestionError struct {
	// QuestionID is the id of the offending catalog entry.
	QuestionID string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for QuestionError.
func (e *QuestionError) Error() string {
	return fmt.Sprintf("question %q: %v", e.QuestionID, e.Err)
}

// Unwrap returns the underlying error, supporting Go 1.13+ error unwrapping.
func (e *QuestionError) Unwrap() error { return e.Err }

// NewQuestionError creates a new QuestionError.
func NewQuestionError(id string, err error) *QuestionError {
	return &QuestionError{QuestionID: id, Err: err}
}

// ValidationError represents an error that occurred during validation.
// It can contain multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string

	// causes keeps the wrapped errors so errors.Is can see sentinel values.
	causes []error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// Unwrap exposes every recorded cause to errors.Is and errors.As.
func (e *ValidationError) Unwrap() []error { return e.causes }

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// Add records err, keeping it reachable through Unwrap.
func (e *ValidationError) Add(err error) {
	e.Errors = append(e.Errors, err.Error())
	e.causes = append(e.causes, err)
}

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}
