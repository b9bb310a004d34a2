package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("pw123", bcrypt.DefaultCost)
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", h)

	assert.True(t, CheckPassword(h, "pw123"))
	assert.False(t, CheckPassword(h, "pw124"))
	assert.False(t, CheckPassword("not-a-hash", "pw123"))
}

func TestHashPassword_EnforcesMinimumCost(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("pw123", bcrypt.MinCost)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(h))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cost, bcrypt.DefaultCost)
}

func TestHashPassword_Salted(t *testing.T) {
	t.Parallel()

	a, err := HashPassword("same", bcrypt.DefaultCost)
	require.NoError(t, err)
	b, err := HashPassword("same", bcrypt.DefaultCost)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashPassword_RejectsOverlongPassword(t *testing.T) {
	t.Parallel()

	_, err := HashPassword(strings.Repeat("a", MaxPasswordBytes+1), bcrypt.DefaultCost)
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = HashPassword(strings.Repeat("a", MaxPasswordBytes), bcrypt.DefaultCost)
	assert.NoError(t, err)
}
