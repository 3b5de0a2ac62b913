package discord

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMessageShortTextIsOneChunk(t *testing.T) {
	chunks := splitMessage("hello there", maxMessageLen)
	assert.Equal(t, []string{"hello there"}, chunks)
}

func TestSplitMessagePrefersParagraphBreaks(t *testing.T) {
	a := strings.Repeat("a", 1200)
	b := strings.Repeat("b", 1200)
	chunks := splitMessage(a+"\n\n"+b, maxMessageLen)

	require.Len(t, chunks, 2)
	assert.Equal(t, a, chunks[0])
	assert.Equal(t, b, chunks[1])
}

func TestSplitMessageHardCutsUnbrokenText(t *testing.T) {
	chunks := splitMessage(strings.Repeat("x", 4500), maxMessageLen)

	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), maxMessageLen)
	}
}

func TestStripMention(t *testing.T) {
	assert.Equal(t, "hello", stripMention("<@123> hello", "123"))
	assert.Equal(t, "hello", stripMention("<@!123> hello", "123"))
	assert.Equal(t, "hello <@456>", stripMention("hello <@456>", "123"))
}
