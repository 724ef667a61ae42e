// internal/inference/errors.go
package inference

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for classification with errors.Is.
var (
	ErrUnknownCategory = errors.New("UNKNOWN_CATEGORY")
	ErrInvalidInput    = errors.New("INVALID_INPUT")
	ErrSchemaMismatch  = errors.New("SCHEMA_MISMATCH")
)

// UnknownCategoryError is returned when a categorical value is outside the
// encoder's fitted domain.
type UnknownCategoryError struct {
	Field string
	Value string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q for field %s", e.Value, e.Field)
}

func (e *UnknownCategoryError) Is(target error) bool {
	return target == ErrUnknownCategory
}

// InvalidInputError is returned when a numeric input violates a precondition.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input for field %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// SchemaMismatchError signals that loaded artifacts disagree with the feature
// set this code assembles. It is never caused by user input.
type SchemaMismatchError struct {
	Missing []string
	Extra   []string
	Reason  string
}

func (e *SchemaMismatchError) Error() string {
	var parts []string
	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}
	if len(e.Missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, "unexpected: "+strings.Join(e.Extra, ", "))
	}
	if len(parts) == 0 {
		return "schema mismatch"
	}
	return "schema mismatch: " + strings.Join(parts, "; ")
}

func (e *SchemaMismatchError) Is(target error) bool {
	return target == ErrSchemaMismatch
}

// UserMessage renders any prediction error as the single string shown to the
// person who submitted the form.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return "Error during prediction: " + err.Error()
}
