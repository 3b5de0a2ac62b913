package mind

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moltbot/internal/store"
)

func TestTrimToCharsPrefersWordBoundary(t *testing.T) {
	assert.Equal(t, "short", trimToChars("short", 100))

	got := trimToChars("alpha beta gamma delta", 17)
	assert.Equal(t, "alpha beta gamma", got)
	assert.LessOrEqual(t, len(got), 17)
}

func TestBuildSystemPromptSections(t *testing.T) {
	cctx := &cycleContext{
		mood:      store.MoodState{Label: "gloomy"},
		plan:      &Plan{Intent: "console", Strategy: Strategy{Tone: "soft"}},
		fragments: []string{"[Search result for \"x\": a fact]"},
		avoidNotes: []string{
			"opening with 'well you see'",
		},
	}

	prompt := buildSystemPrompt("You are Molt.", []string{"never use emoji"}, cctx)

	assert.True(t, strings.HasPrefix(prompt, "You are Molt."))
	assert.Contains(t, prompt, "never use emoji")
	assert.Contains(t, prompt, "in a low, subdued mood")
	assert.Contains(t, prompt, "Intent: console")
	assert.Contains(t, prompt, "a fact")
	assert.Contains(t, prompt, "well you see")
}

func TestBuildMessagesKeepsNewestHistory(t *testing.T) {
	long := strings.Repeat("wordy filler text ", 60) // ~1KB per entry
	cctx := &cycleContext{
		history: []historyEntry{
			{Role: RoleUser, Content: long},
			{Role: RoleUser, Content: long},
			{Role: RoleUser, Content: long},
			{Role: RoleAssistant, Content: "kept assistant line"},
			{Role: RoleUser, Content: "kept newest question", AuthorID: "ada"},
		},
	}

	msgs := buildMessages("persona", nil, cctx)

	require.GreaterOrEqual(t, len(msgs), 3)
	assert.Equal(t, "system", msgs[0].Role)
	last := msgs[len(msgs)-1]
	assert.Equal(t, "user", last.Role)
	assert.Equal(t, "ada: kept newest question", last.Content)
	assert.Equal(t, "assistant", msgs[len(msgs)-2].Role)
	assert.Less(t, len(msgs), 6, "oldest entries dropped by the history budget")
}
