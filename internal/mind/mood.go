package mind

import (
	"time"

	"moltbot/internal/store"
)

// Refusal side-effect deltas: refusing makes the agent a little sour and a
// little more settled.
const (
	refusalValenceDelta   = -0.08
	refusalStabilityDelta = 0.05
)

// MoodDelta is a partial mood update. Nil axes are left unchanged; Set
// replaces the provided axes instead of adding to them.
type MoodDelta struct {
	Valence   *float64
	Arousal   *float64
	Stability *float64
	Set       bool
}

// MoodEngine owns the agent's affective state. Mood changes only through
// explicit updates or the refusal side-effect, never inferred from message
// sentiment.
type MoodEngine struct {
	store *store.Store
}

func NewMoodEngine(s *store.Store) *MoodEngine {
	return &MoodEngine{store: s}
}

// Current returns the present mood state.
func (m *MoodEngine) Current() store.MoodState {
	return m.store.Mood()
}

// Update applies a partial mood change, clamps every axis into [-1,1],
// re-derives the label, stamps the change, and appends to the history log.
func (m *MoodEngine) Update(delta MoodDelta) store.MoodState {
	cur := m.store.Mood()

	apply := func(axis float64, d *float64) float64 {
		if d == nil {
			return axis
		}
		if delta.Set {
			return *d
		}
		return axis + *d
	}
	cur.Valence = clampAxis(apply(cur.Valence, delta.Valence))
	cur.Arousal = clampAxis(apply(cur.Arousal, delta.Arousal))
	cur.Stability = clampAxis(apply(cur.Stability, delta.Stability))
	cur.Label = moodLabel(cur)
	cur.LastUpdate = time.Now()

	m.store.SetMood(cur)
	return cur
}

// IncrementRefusalCount bumps the surface refusal counter and folds the
// refusal nudge into the mood, composed with nothing else: explicit mood
// updates from the same cycle go through Update separately.
func (m *MoodEngine) IncrementRefusalCount(surface string) int {
	dv, ds := refusalValenceDelta, refusalStabilityDelta
	m.Update(MoodDelta{Valence: &dv, Stability: &ds})
	return m.store.IncrementRefusal(surface)
}

func clampAxis(x float64) float64 {
	if x < -1 {
		return -1
	}
	if x > 1 {
		return 1
	}
	return x
}

// moodLabel derives the discrete label from the axes, so label and axes can
// never drift apart.
func moodLabel(m store.MoodState) string {
	switch {
	case m.Valence > 0.3 && m.Arousal > 0.3:
		return "exuberant"
	case m.Valence > 0.3:
		return "content"
	case m.Valence < -0.3 && m.Arousal > 0.3:
		return "irritable"
	case m.Valence < -0.3:
		return "gloomy"
	case m.Arousal > 0.5:
		return "restless"
	case m.Stability < -0.3:
		return "volatile"
	default:
		return "neutral"
	}
}

// moodPhrase converts the mood to a short plain-language phrase for prompts.
// The model sees words, not numbers.
func moodPhrase(m store.MoodState) string {
	switch m.Label {
	case "exuberant":
		return "in high spirits and energetic"
	case "content":
		return "in a good, settled mood"
	case "irritable":
		return "on edge and easily annoyed"
	case "gloomy":
		return "in a low, subdued mood"
	case "restless":
		return "restless and keyed up"
	case "volatile":
		return "unsettled, mood could swing"
	default:
		return "even-keeled"
	}
}
