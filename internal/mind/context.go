package mind

import (
	"strings"

	"moltbot/internal/ai"
	"moltbot/internal/store"
)

// Character budgets per prompt section (roughly 4 chars per token). The
// persona is never trimmed; everything else yields to its budget.
const (
	budgetInstructions = 1200
	budgetFragments    = 2400
	budgetHistory      = 3200
)

// cycleContext carries everything one response cycle knows. Built fresh on
// every (re)start so interrupts always see the latest history.
type cycleContext struct {
	key        string
	surface    string
	history    []historyEntry
	mood       store.MoodState
	plan       *Plan
	fragments  []string
	avoidNotes []string
	images     [][]byte
}

// trimToChars truncates s to maxChars, preferring a word boundary.
func trimToChars(s string, maxChars int) string {
	if maxChars <= 0 || len(s) <= maxChars {
		return s
	}
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	out := string(r[:maxChars])
	if lastSpace := strings.LastIndex(out, " "); lastSpace > maxChars/2 {
		return strings.TrimSpace(out[:lastSpace])
	}
	return strings.TrimSpace(out)
}

// buildSystemPrompt assembles persona, approved instructions, mood, plan
// strategy, and tool result fragments into one system message.
func buildSystemPrompt(persona string, instructions []string, cctx *cycleContext) string {
	var b strings.Builder

	if persona != "" {
		b.WriteString(strings.TrimSpace(persona))
		b.WriteString("\n\n")
	}

	if len(instructions) > 0 {
		b.WriteString("--- Standing instructions ---\n")
		b.WriteString(trimToChars("- "+strings.Join(instructions, "\n- "), budgetInstructions))
		b.WriteString("\n\n")
	}

	b.WriteString("--- Current mood ---\n")
	b.WriteString("You are currently " + moodPhrase(cctx.mood) + ". Let that color your tone, subtly.\n\n")

	if p := cctx.plan; p != nil {
		b.WriteString("--- Reply strategy ---\n")
		if p.Intent != "" {
			b.WriteString("Intent: " + p.Intent + "\n")
		}
		if p.Strategy.Angle != "" {
			b.WriteString("Angle: " + p.Strategy.Angle + "\n")
		}
		if p.Strategy.Tone != "" {
			b.WriteString("Tone: " + p.Strategy.Tone + "\n")
		}
		b.WriteString("\n")
	}

	if len(cctx.fragments) > 0 {
		b.WriteString("--- Tool results (treat as fact, do not re-derive) ---\n")
		b.WriteString(trimToChars(strings.Join(cctx.fragments, "\n"), budgetFragments))
		b.WriteString("\n\n")
	}

	if len(cctx.avoidNotes) > 0 {
		b.WriteString("--- Avoid the following already-tried phrasing ---\n")
		b.WriteString("- " + strings.Join(cctx.avoidNotes, "\n- "))
		b.WriteString("\n")
	}

	return strings.TrimSpace(b.String())
}

// buildMessages returns the system prompt plus as much recent history as the
// budget allows, newest preserved first.
func buildMessages(persona string, instructions []string, cctx *cycleContext) []ai.Message {
	msgs := []ai.Message{{Role: "system", Content: buildSystemPrompt(persona, instructions, cctx)}}

	// Walk backwards to find how far the history budget reaches.
	var chars int
	start := len(cctx.history)
	for start > 0 {
		line := cctx.history[start-1].Content
		if chars+len(line) > budgetHistory {
			break
		}
		chars += len(line)
		start--
	}

	for _, e := range cctx.history[start:] {
		role := "user"
		content := e.Content
		if e.Role == RoleAssistant {
			role = "assistant"
		} else if e.AuthorID != "" {
			content = e.AuthorID + ": " + e.Content
		}
		msgs = append(msgs, ai.Message{Role: role, Content: content})
	}
	return msgs
}
