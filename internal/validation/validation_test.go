package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/mazo/internal/apperr"
)

type sample struct {
	UserID string `validate:"required"`
	Size   int    `validate:"min=1,max=100"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct(sample{UserID: "u1", Size: 10}))

	err := Struct(sample{Size: 10})
	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "userID", verr.Field)
	assert.Equal(t, "is required", verr.Message)

	err = Struct(sample{UserID: "u1", Size: 0})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "size", verr.Field)
	assert.Equal(t, "must be at least 1", verr.Message)
}

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("email", "ana@example.com"))
	assert.ErrorIs(t, Email("email", ""), apperr.ErrValidation)
	assert.ErrorIs(t, Email("email", "not-an-email"), apperr.ErrValidation)
}

func TestRequired(t *testing.T) {
	assert.NoError(t, Required("phone", "+34600000000"))
	assert.ErrorIs(t, Required("phone", "   "), apperr.ErrValidation)
}
