package util

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreFailure(t *testing.T) {
	t.Run("WrapsStorageError", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := StoreFailure("withdraw", cause)

		assert.ErrorIs(t, err, ErrStoreFailure)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "withdraw")
		assert.Contains(t, err.Error(), "connection reset")
	})

	t.Run("KeepsDomainError", func(t *testing.T) {
		domainErr := fmt.Errorf("withdraw: %w", ErrInsufficientGasBalance)
		err := StoreFailure("withdraw", domainErr)

		assert.Same(t, domainErr, err)
		assert.False(t, errors.Is(err, ErrStoreFailure))
	})

	t.Run("Nil", func(t *testing.T) {
		assert.NoError(t, StoreFailure("noop", nil))
	})
}

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("amount must be positive, got %s", "-1")
	assert.True(t, IsError(err, ErrInvalidInput))
	assert.Equal(t, "invalid input provided: amount must be positive, got -1", err.Error())
}
