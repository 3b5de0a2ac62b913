package ai

import (
	"context"
	"fmt"
	"strings"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options tune a single completion call. Zero values mean provider defaults.
type Options struct {
	Temperature float64
	MaxTokens   int
	// Avoid lists opening phrases or themes the reply must not use. Folded
	// into the system context by the provider.
	Avoid []string
}

// Provider is the text generation backend. A timeout or backend failure
// surfaces as an error; callers treat that as a null candidate.
type Provider interface {
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
}

// ImageProvider renders an image for a prompt.
type ImageProvider interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// New returns the provider selected by the engine string, e.g.
// "pollinations" or "g4f:gpt-oss-120b".
func New(engine string) (Provider, error) {
	switch {
	case engine == "" || engine == "pollinations":
		return NewPollinationsProvider(), nil
	case engine == "g4f" || strings.HasPrefix(engine, "g4f:"):
		return NewG4FProvider(engine), nil
	default:
		return nil, fmt.Errorf("unsupported AI_PROVIDER: %s", engine)
	}
}

// applyAvoid appends the avoid-list to the system message so every provider
// honors Options.Avoid the same way.
func applyAvoid(messages []Message, avoid []string) []Message {
	if len(avoid) == 0 {
		return messages
	}
	note := "Do not open with or reuse any of the following phrasings:\n- " + strings.Join(avoid, "\n- ")
	out := make([]Message, len(messages))
	copy(out, messages)
	if len(out) > 0 && out[0].Role == "system" {
		out[0].Content = out[0].Content + "\n\n" + note
		return out
	}
	return append([]Message{{Role: "system", Content: note}}, out...)
}
