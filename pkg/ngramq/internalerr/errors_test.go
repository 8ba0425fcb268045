package internalerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaErrorMessage(t *testing.T) {
	err := &SchemaError{Missing: []string{"cost", "conversions"}}
	assert.Equal(t, "missing required columns: [cost conversions]", err.Error())

	withAvail := &SchemaError{Missing: []string{"cost"}, Available: []string{"query", "clicks"}}
	assert.Contains(t, withAvail.Error(), "available columns: query, clicks")
}

func TestTypedErrorsMatchSentinels(t *testing.T) {
	var schemaErr error = &SchemaError{Missing: []string{"query"}}
	wrapped := fmt.Errorf("aggregate: %w", schemaErr)
	assert.True(t, errors.Is(wrapped, ErrSchema))
	assert.False(t, errors.Is(wrapped, ErrInvalidInput))

	var target *SchemaError
	if assert.True(t, errors.As(wrapped, &target)) {
		assert.Equal(t, []string{"query"}, target.Missing)
	}

	inputErr := NewInputValueError("n", 0, "must be >= 1")
	assert.True(t, errors.Is(inputErr, ErrInvalidInput))
	assert.Equal(t, "invalid n 0: must be >= 1", inputErr.Error())
}
