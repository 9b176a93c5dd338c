package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewUnique("email", "email already registered"))

	assert.True(t, errors.Is(err, ErrUniqueConstraint))
	assert.True(t, errors.Is(err, &Error{Kind: UniqueConstraint, Field: "email"}))
	assert.False(t, errors.Is(err, &Error{Kind: UniqueConstraint, Field: "phone_number"}))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, UniqueConstraint, KindOf(err))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "PERMISSION: not yours", NewPermission("not yours").Error())
	assert.Equal(t, "VALIDATION (rating): rating must be between 1 and 5",
		NewValidation("rating", "rating must be between %d and %d", 1, 5).Error())
}
