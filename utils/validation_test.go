package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	sentinel := errors.New("fields are required")
	err := &ValidationError{Code: "MISSING_FIELDS", Message: "Tous les champs sont requis", Err: sentinel}
	assert.Equal(t, "Tous les champs sont requis", err.Error())
	assert.ErrorIs(t, err, sentinel)

	var wrapped error = fmt.Errorf("claim: %w", err)
	var target *ValidationError
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "MISSING_FIELDS", target.Code)
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"postgres duplicate key", errors.New(`ERROR: duplicate key value violates unique constraint "idx_legacy_records_code" (SQLSTATE 23505)`), true},
		{"sqlite unique constraint", errors.New("UNIQUE constraint failed: legacy_records.code"), true},
		{"unrelated error", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err))
		})
	}
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", FirstNonEmpty("", "  ", "b", "c"))
	assert.Equal(t, "", FirstNonEmpty("", " "))
	assert.Equal(t, "", FirstNonEmpty())
}
