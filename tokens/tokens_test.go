package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPasswordTokenRoundTrip(t *testing.T) {
	tok, err := NewSetPasswordToken("secret", 42, time.Hour)
	require.NoError(t, err)

	id, err := ParseSetPasswordToken("secret", tok)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestSetPasswordTokenWrongSecret(t *testing.T) {
	tok, err := NewSetPasswordToken("secret", 42, time.Hour)
	require.NoError(t, err)

	_, err = ParseSetPasswordToken("other", tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSetPasswordTokenExpired(t *testing.T) {
	tok, err := NewSetPasswordToken("secret", 42, -time.Minute)
	require.NoError(t, err)

	_, err = ParseSetPasswordToken("secret", tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSetPasswordTokenGarbage(t *testing.T) {
	_, err := ParseSetPasswordToken("secret", "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
