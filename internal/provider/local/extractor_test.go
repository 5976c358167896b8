package local

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateShortTextUnchanged(t *testing.T) {
	text, truncated := Truncate("short enough", 100)
	assert.Equal(t, "short enough", text)
	assert.False(t, truncated)
}

func TestTruncateExactLimitUnchanged(t *testing.T) {
	text, truncated := Truncate("abcde", 5)
	assert.Equal(t, "abcde", text)
	assert.False(t, truncated)
}

func TestTruncateAtWordBoundary(t *testing.T) {
	text, truncated := Truncate("restart the recorder and verify storage", 25)
	assert.True(t, truncated)
	assert.LessOrEqual(t, len([]rune(text)), 25)
	assert.True(t, strings.HasSuffix(text, Ellipsis))

	// Never mid-word: everything before the ellipsis must be whole
	// words of the input.
	body := strings.TrimSuffix(text, Ellipsis)
	for _, word := range strings.Fields(body) {
		assert.Contains(t, []string{"restart", "the", "recorder", "and", "verify", "storage"}, word)
	}
	assert.NotEqual(t, "restart the recorder and ", body, "no trailing space before the ellipsis")
}

func TestTruncateSingleOversizedToken(t *testing.T) {
	text, truncated := Truncate("supercalifragilistic", 10)
	assert.True(t, truncated)
	assert.Len(t, []rune(text), 10)
	assert.True(t, strings.HasSuffix(text, Ellipsis))
}

func TestTruncateMultibyte(t *testing.T) {
	text, truncated := Truncate("ответ на вопрос по записи звонков", 15)
	assert.True(t, truncated)
	assert.LessOrEqual(t, len([]rune(text)), 15)
}

func TestTruncateZeroBudget(t *testing.T) {
	text, truncated := Truncate("anything", 0)
	assert.Empty(t, text)
	assert.True(t, truncated)
}
