package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncatePath(t *testing.T) {
	assert.Equal(t, "short.go", TruncatePath("short.go", 20))
	assert.Equal(t, "...ternal/contract/configs.go", TruncatePath("internal/contract/configs.go", 29))
	assert.Equal(t, "ab", TruncatePath("ab", 2))
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "YES", "true", "1"} {
		v, err := ParseBoolString(s)
		assert.NoError(t, err)
		assert.True(t, v)
	}
	for _, s := range []string{"no", "No", "false", "0"} {
		v, err := ParseBoolString(s)
		assert.NoError(t, err)
		assert.False(t, v)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

func TestMatchesAnyFilter(t *testing.T) {
	assert.True(t, MatchesAnyFilter("alice@example.com", nil), "empty filters match everything")
	assert.True(t, MatchesAnyFilter("alice@example.com", []string{"bob", "example.com"}))
	assert.False(t, MatchesAnyFilter("alice@example.com", []string{"bob"}))
}

func TestGetColorLabel(t *testing.T) {
	// Color codes vary by terminal support, so only assert the text payload.
	assert.Contains(t, GetColorLabel(75), "Primary")
	assert.Contains(t, GetColorLabel(30), "Major")
	assert.Contains(t, GetColorLabel(12), "Minor")
	assert.Contains(t, GetColorLabel(3), "Marginal")
}
