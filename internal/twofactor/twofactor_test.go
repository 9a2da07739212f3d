package twofactor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecret(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		s := GenerateSecret()
		require.Len(t, s, 10)
		for _, r := range s {
			assert.Contains(t, secretAlphabet, string(r))
		}
		seen[s] = true
	}
	// Effectively always distinct.
	assert.Greater(t, len(seen), 1)
}

func TestCodeAt_StableWithinMinute(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	code := CodeAt("SECRET1234", base)
	require.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9')
	}

	// Any instant within the same epoch minute yields the same code.
	assert.Equal(t, code, CodeAt("SECRET1234", base.Add(59*time.Second)))
	// The next minute yields a different one (for this secret and instant).
	assert.NotEqual(t, code, CodeAt("SECRET1234", base.Add(time.Minute)))
	// Different secrets yield different codes.
	assert.NotEqual(t, code, CodeAt("OTHERSECRT", base))
}

func TestVerify_AcceptsCurrentAndPreviousMinute(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 30, 30, 0, time.UTC)

	current := CodeAt("SECRET1234", now)
	previous := CodeAt("SECRET1234", now.Add(-time.Minute))
	stale := CodeAt("SECRET1234", now.Add(-2*time.Minute))

	assert.True(t, Verify("SECRET1234", current, now))
	assert.True(t, Verify("SECRET1234", previous, now))
	assert.False(t, Verify("SECRET1234", stale, now))
	assert.False(t, Verify("SECRET1234", "000000", now))
	assert.False(t, Verify("WRONGSECRT", current, now))
}
