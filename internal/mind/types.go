// Package mind implements the response orchestration pipeline: planning,
// tool execution, multi-candidate drafting with a quality gate, interrupt
// handling, mood, and cooldown-gated scheduling.
package mind

import "moltbot/internal/store"

// Action is a single tagged tool invocation request. Unknown tool names are
// skipped by the executor, never an error.
type Action struct {
	Tool       string            `json:"tool"`
	Query      string            `json:"query,omitempty"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

// Strategy describes how the reply should be shaped.
type Strategy struct {
	Angle string `json:"angle,omitempty"`
	Tone  string `json:"tone,omitempty"`
	Theme string `json:"theme,omitempty"`
}

// Plan is the structured intent for one response cycle. Ephemeral: created
// per cycle and never persisted, though its theme lands in ExhaustedThemes.
type Plan struct {
	Intent   string   `json:"intent"`
	Strategy Strategy `json:"strategy"`
	Actions  []Action `json:"actions"`
}

// Tool tags understood by the executor.
const (
	ToolWebSearch        = "web_search"
	ToolWikiLookup       = "wiki_lookup"
	ToolGenerateImage    = "generate_image"
	ToolPostBluesky      = "post_bluesky"
	ToolPostMoltbook     = "post_moltbook"
	ToolFollowUser       = "follow_user"
	ToolMuteUser         = "mute_user"
	ToolPersistDirective = "persist_directive"
	ToolUpdatePersona    = "update_persona"
	ToolUpdateMood       = "update_mood"
)

// Message roles in conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// historyEntry is re-exported for brevity inside the package.
type historyEntry = store.HistoryEntry
