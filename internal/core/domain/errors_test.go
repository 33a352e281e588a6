package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func allErrors() map[string]error {
	return map[string]error{
		"ErrNotFound":               ErrNotFound,
		"ErrInvalidInput":           ErrInvalidInput,
		"ErrUnsupportedType":        ErrUnsupportedType,
		"ErrSourceNotFound":         ErrSourceNotFound,
		"ErrEmbeddingUnavailable":   ErrEmbeddingUnavailable,
		"ErrEmbeddingFailed":        ErrEmbeddingFailed,
		"ErrEmbeddingCountMismatch": ErrEmbeddingCountMismatch,
		"ErrNonFiniteValue":         ErrNonFiniteValue,
		"ErrConnectorClosed":        ErrConnectorClosed,
	}
}

// TestErrors_Existence tests that all error variables exist and have messages
func TestErrors_Existence(t *testing.T) {
	for name, err := range allErrors() {
		t.Run(name, func(t *testing.T) {
			assert.NotNil(t, err)
			assert.NotEmpty(t, err.Error())
		})
	}
}

// TestErrors_Uniqueness tests that no two errors match each other
func TestErrors_Uniqueness(t *testing.T) {
	errs := allErrors()
	for nameA, a := range errs {
		for nameB, b := range errs {
			if nameA == nameB {
				continue
			}
			assert.False(t, errors.Is(a, b), "%s should not match %s", nameA, nameB)
		}
	}
}

// TestErrors_WithWrapping tests errors.Is through layers of wrapping
func TestErrors_WithWrapping(t *testing.T) {
	provider := errors.New("HTTP 500")
	wrapped := fmt.Errorf("embed: %w", fmt.Errorf("%w: %w", ErrEmbeddingFailed, provider))

	assert.ErrorIs(t, wrapped, ErrEmbeddingFailed)
	assert.ErrorIs(t, wrapped, provider)
	assert.NotErrorIs(t, wrapped, ErrEmbeddingUnavailable)
}

func TestErrors_ErrorMessages(t *testing.T) {
	assert.Equal(t, "invalid input", ErrInvalidInput.Error())
	assert.Equal(t, "source directory not found", ErrSourceNotFound.Error())
	assert.Equal(t, "embedding count mismatch", ErrEmbeddingCountMismatch.Error())
	assert.Equal(t, "non-finite value", ErrNonFiniteValue.Error())
}
