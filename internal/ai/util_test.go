package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanReplyStripsThinkBlocks(t *testing.T) {
	got := cleanReply("<think>internal reasoning</think>the actual answer")
	assert.Equal(t, "the actual answer", got)
}

func TestCleanReplyUnwrapsQuotes(t *testing.T) {
	assert.Equal(t, "plain words", cleanReply(`"plain words"`))
	assert.Equal(t, "plain words", cleanReply("“plain words”"))
	assert.Equal(t, `he said "hi" twice`, cleanReply(`he said "hi" twice`))
}

func TestCleanReplyCapsLength(t *testing.T) {
	got := cleanReply(strings.Repeat("a", 3000))
	assert.True(t, strings.HasSuffix(got, "[truncated]"))
	assert.LessOrEqual(t, len(got), 2820)
}

func TestIsGarbageResponse(t *testing.T) {
	assert.True(t, isGarbageResponse("<html><body>error page</body></html>"))
	assert.True(t, isGarbageResponse("Not Allowed"))
	assert.True(t, isGarbageResponse("  ok "))
	assert.False(t, isGarbageResponse("a normal reply of decent length"))
}

func TestApplyAvoidFoldsIntoSystemMessage(t *testing.T) {
	msgs := []Message{
		{Role: "system", Content: "persona"},
		{Role: "user", Content: "question"},
	}
	out := applyAvoid(msgs, []string{"opening with 'well'"})

	assert.Contains(t, out[0].Content, "persona")
	assert.Contains(t, out[0].Content, "opening with 'well'")
	assert.Equal(t, "question", out[1].Content)
	// Original slice untouched.
	assert.Equal(t, "persona", msgs[0].Content)
}

func TestApplyAvoidWithoutSystemMessage(t *testing.T) {
	out := applyAvoid([]Message{{Role: "user", Content: "q"}}, []string{"x"})
	assert.Equal(t, "system", out[0].Role)
	assert.Len(t, out, 2)
}

func TestNewRejectsUnknownEngine(t *testing.T) {
	_, err := New("quantum-oracle")
	assert.Error(t, err)

	p, err := New("")
	assert.NoError(t, err)
	assert.NotNil(t, p)
}
