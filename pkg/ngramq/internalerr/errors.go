package internalerr

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrSchema           = errors.New("schema mismatch")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// SchemaError reports required columns absent from an input table.
// It is raised before any row is processed.
type SchemaError struct {
	Missing   []string
	Available []string
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("missing required columns: [%s]", strings.Join(e.Missing, " "))
	if len(e.Available) > 0 {
		msg += fmt.Sprintf(" (available columns: %s)", strings.Join(e.Available, ", "))
	}
	return msg
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// InputValueError rejects an out-of-range argument such as an n-gram size below 1.
type InputValueError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InputValueError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

func (e *InputValueError) Is(target error) bool { return target == ErrInvalidInput }

// NewInputValueError is a shorthand used by argument checks.
func NewInputValueError(field string, value any, reason string) error {
	return &InputValueError{Field: field, Value: value, Reason: reason}
}
