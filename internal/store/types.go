package store

import "time"

// HistoryEntry is one message in a conversation, oldest first in storage.
type HistoryEntry struct {
	Role      string    `json:"role"` // "user" | "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	AuthorID  string    `json:"author_id,omitempty"`
}

// MoodState is the agent's 3-axis affective state. Axes are clamped to
// [-1,1] on every write; Label is derived from the axes.
type MoodState struct {
	Valence    float64   `json:"valence"`
	Arousal    float64   `json:"arousal"`
	Stability  float64   `json:"stability"`
	Label      string    `json:"label"`
	LastUpdate time.Time `json:"last_update"`
}

// ScheduledPost is a deferred public post, created when a cooldown blocks an
// immediate send and consumed by the periodic sweep.
type ScheduledPost struct {
	ID          string    `json:"id"`
	Surface     string    `json:"surface"`
	Content     string    `json:"content"`
	Embed       string    `json:"embed,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// PendingDirective is an operator-facing behavioral instruction awaiting
// approval before it is merged into the permanent instruction set.
type PendingDirective struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"` // "directive" | "persona"
	Platform    string    `json:"platform,omitempty"`
	Instruction string    `json:"instruction"`
	Timestamp   time.Time `json:"timestamp"`
}

// Instruction is an approved directive, part of the persona's permanent
// instruction set.
type Instruction struct {
	Type       string    `json:"type"`
	Platform   string    `json:"platform,omitempty"`
	Text       string    `json:"text"`
	ApprovedAt time.Time `json:"approved_at"`
}

// ExhaustedTheme marks a conversational theme as recently used. Entries
// older than the pruning window are dropped on read.
type ExhaustedTheme struct {
	Theme     string    `json:"theme"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	DirectiveTypeDirective = "directive"
	DirectiveTypePersona   = "persona"
)
