package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	t.Run("kind sentinel matches any code of that kind", func(t *testing.T) {
		err := NewValidationError("EXCEEDS_REMAINING", "too much")
		assert.True(t, errors.Is(err, ErrValidation))
		assert.False(t, errors.Is(err, ErrNotFound))
		assert.False(t, errors.Is(err, ErrInvalidState))
	})

	t.Run("specific codes must match", func(t *testing.T) {
		err := NewValidationError("EXCEEDS_REMAINING", "too much")
		assert.False(t, errors.Is(err, ErrNonPositiveAmount))
		assert.True(t, errors.Is(ErrNonPositiveAmount, ErrNonPositiveAmount))
	})

	t.Run("wrapped errors keep their kind", func(t *testing.T) {
		err := fmt.Errorf("load part: %w", NewNotFoundError("part", uuid.New()))
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("plain errors have no kind", func(t *testing.T) {
		assert.Equal(t, ErrorKind(""), KindOf(errors.New("boom")))
	})
}
