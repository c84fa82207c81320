package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserErrorWrapsCause(t *testing.T) {
	cause := fmt.Errorf("lookup: %w", ErrNotFound)
	err := NewUserError("transaction TXN-1 not found", cause)

	assert.Equal(t, "transaction TXN-1 not found: lookup: not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)

	var userErr *UserError
	assert.True(t, errors.As(err, &userErr))
	assert.Equal(t, "transaction TXN-1 not found", userErr.UserMessage)
}

func TestUserErrorWithoutCause(t *testing.T) {
	err := NewUserError("nothing to import", nil)
	assert.Equal(t, "nothing to import", err.Error())
}
