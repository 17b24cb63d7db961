package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches direct error", func(t *testing.T) {
		err := New(CodeValidation, "bad")
		assert.True(t, HasCode(err, CodeValidation))
		assert.False(t, HasCode(err, CodeInternal))
	})

	t.Run("matches through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", New(CodeConfiguration, "missing key"))
		assert.True(t, HasCode(err, CodeConfiguration))
	})

	t.Run("matches inner coded error", func(t *testing.T) {
		inner := New(CodeConfiguration, "missing key")
		err := Wrap(inner, CodeInternal, "encrypt failed")
		assert.True(t, HasCode(err, CodeInternal))
		assert.True(t, HasCode(err, CodeConfiguration))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("x"), CodeInternal))
		assert.False(t, HasCode(nil, CodeInternal))
	})
}

func TestNewField(t *testing.T) {
	err := NewField(CodeValidation, "price", "gt_zero", "must be greater than 0")
	require.Equal(t, "price: must be greater than 0", err.Error())

	de, ok := As(fmt.Errorf("wrapped: %w", err))
	require.True(t, ok)
	assert.Equal(t, "price", de.Field)
	assert.Equal(t, "gt_zero", de.Constraint)
}

func TestWrap_Unwraps(t *testing.T) {
	sentinel := errors.New("disk full")
	err := Wrap(sentinel, CodeInternal, "persist")
	assert.True(t, Is(err, sentinel))
	assert.Equal(t, "persist: disk full", err.Error())
}

func TestCode_IsClientFacing(t *testing.T) {
	assert.True(t, CodeValidation.IsClientFacing())
	assert.False(t, CodeConfiguration.IsClientFacing())
	assert.False(t, CodeInternal.IsClientFacing())
}
