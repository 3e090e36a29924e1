package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashToken(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"valid token", strings.Repeat("t", 32), nil},
		{"too short", "short", ErrTokenTooShort},
		{"minimum length", strings.Repeat("t", MinTokenLength), nil},
		{"too long", strings.Repeat("t", 73), ErrTokenTooLong},
		{"maximum length", strings.Repeat("t", 72), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashToken(tt.token, bcrypt.MinCost)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, hash)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, CheckToken(tt.token, hash))
		})
	}
}

func TestCheckToken(t *testing.T) {
	hash, err := HashToken(strings.Repeat("a", 30), bcrypt.MinCost)
	require.NoError(t, err)

	assert.ErrorIs(t, CheckToken(strings.Repeat("b", 30), hash), ErrInvalidToken)
	assert.Error(t, CheckToken("anything", "not-a-hash"))
}

func TestGenerateToken(t *testing.T) {
	plain, hash, err := GenerateToken(bcrypt.MinCost)
	require.NoError(t, err)
	assert.Len(t, plain, 64)
	assert.NoError(t, CheckToken(plain, hash))

	other, _, err := GenerateToken(bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, plain, other)
}
