package mind

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"moltbot/internal/ai"
	"moltbot/internal/store"
)

const maxPlanAttempts = 3

const planSystemPrompt = `You are the planning stage of a persona agent. Given the conversation, decide the intent of the next reply, its strategy, and which tool actions (if any) to run first. Output only valid JSON with these keys: intent (string), strategy (object with angle, tone, theme), actions (array of {tool, query, parameters}). Available tools: web_search, wiki_lookup, generate_image, post_bluesky, post_moltbook, follow_user, mute_user, persist_directive, update_persona, update_mood. Use an empty actions array when no tool is needed. Never pick a theme from the exhausted list.`

const reviewSystemPrompt = `You are the self-review stage of a persona agent. Given a proposed plan, judge whether executing it is in character, safe, and worth doing. Output only valid JSON: {"verdict": "accept" or "refuse", "reason": string, "substitute": string}. Leave substitute empty unless you refuse and can suggest a better direction.`

// PlanOutcome enumerates how a planning cycle ended.
type PlanOutcome int

const (
	PlanAccepted PlanOutcome = iota
	PlanExhausted
	PlanInterrupted
)

var (
	planJSONRegex   = regexp.MustCompile(`\{[\s\S]*"intent"[\s\S]*\}`)
	reviewJSONRegex = regexp.MustCompile(`\{[\s\S]*"verdict"[\s\S]*\}`)
)

type planReview struct {
	Verdict    string `json:"verdict"`
	Reason     string `json:"reason"`
	Substitute string `json:"substitute"`
}

// Planner proposes a structured Plan and reviews its own proposal, up to
// maxPlanAttempts times. Every refused attempt bumps the surface refusal
// counter; running out of attempts ends the cycle with no action taken.
type Planner struct {
	provider ai.Provider
	store    *store.Store
	mood     *MoodEngine
	log      zerolog.Logger
}

func NewPlanner(provider ai.Provider, s *store.Store, mood *MoodEngine, log zerolog.Logger) *Planner {
	return &Planner{provider: provider, store: s, mood: mood, log: log.With().Str("component", "planner").Logger()}
}

// Plan runs the attempt loop for one response cycle. A nil plan with
// PlanExhausted means every attempt was refused and the cycle should end
// silently. interrupted is polled before every attempt; a hit abandons the
// loop without touching the refusal counters.
func (p *Planner) Plan(ctx context.Context, cctx *cycleContext, interrupted func() bool) (*Plan, PlanOutcome) {
	p.checkTopicProgression(cctx)

	var feedback string
	for attempt := 1; attempt <= maxPlanAttempts; attempt++ {
		if interrupted != nil && interrupted() {
			return nil, PlanInterrupted
		}
		plan, err := p.propose(ctx, cctx, feedback)
		if err != nil {
			p.log.Warn().Err(err).Int("attempt", attempt).Msg("plan proposal failed")
			feedback = "the previous attempt produced no usable plan, keep it simpler"
			continue
		}

		if theme := strings.ToLower(strings.TrimSpace(plan.Strategy.Theme)); theme != "" && p.store.IsThemeExhausted(theme, time.Now()) {
			p.refuse(cctx, attempt, "theme was used too recently: "+theme)
			feedback = "do not use the theme '" + theme + "', it was covered recently"
			continue
		}

		review, err := p.review(ctx, plan)
		if err != nil {
			p.log.Warn().Err(err).Int("attempt", attempt).Msg("self-review failed, accepting plan as-is")
			review = planReview{Verdict: "accept"}
		}

		if review.Verdict != "refuse" {
			if theme := strings.TrimSpace(plan.Strategy.Theme); theme != "" {
				p.store.AddExhaustedTheme(theme)
			}
			p.log.Debug().Int("attempt", attempt).Str("intent", plan.Intent).Int("actions", len(plan.Actions)).Msg("plan accepted")
			return plan, PlanAccepted
		}

		p.refuse(cctx, attempt, review.Reason)
		feedback = review.Reason
		if review.Substitute != "" {
			feedback += "; instead, try: " + review.Substitute
		}
	}

	return nil, PlanExhausted
}

func (p *Planner) refuse(cctx *cycleContext, attempt int, reason string) {
	count := p.mood.IncrementRefusalCount(cctx.surface)
	p.log.Info().Int("attempt", attempt).Str("reason", reason).Int("refusals", count).Msg("plan refused")
}

func (p *Planner) propose(ctx context.Context, cctx *cycleContext, feedback string) (*Plan, error) {
	var b strings.Builder
	b.WriteString("Current mood: " + moodPhrase(cctx.mood) + "\n")

	if themes := p.store.ExhaustedThemes(time.Now()); len(themes) > 0 {
		b.WriteString("Exhausted themes (do not reuse): " + strings.Join(themes, ", ") + "\n")
	}
	if feedback != "" {
		b.WriteString("Feedback on your previous attempt: " + feedback + "\n")
	}

	b.WriteString("\nConversation, oldest first:\n")
	hist := cctx.history
	if len(hist) > recentOwnWindow {
		hist = hist[len(hist)-recentOwnWindow:]
	}
	for _, e := range hist {
		b.WriteString(e.Role + ": " + trimToChars(e.Content, 300) + "\n")
	}

	out, err := p.provider.Complete(ctx, []ai.Message{
		{Role: "system", Content: planSystemPrompt},
		{Role: "user", Content: b.String()},
	}, ai.Options{Temperature: 0.6})
	if err != nil {
		return nil, err
	}

	raw, err := extractJSON(out, planJSONRegex)
	if err != nil {
		return nil, err
	}
	var plan Plan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	return &plan, nil
}

func (p *Planner) review(ctx context.Context, plan *Plan) (planReview, error) {
	encoded, _ := json.Marshal(plan)
	out, err := p.provider.Complete(ctx, []ai.Message{
		{Role: "system", Content: reviewSystemPrompt},
		{Role: "user", Content: "Proposed plan:\n" + string(encoded)},
	}, ai.Options{Temperature: 0.2})
	if err != nil {
		return planReview{}, err
	}

	raw, err := extractJSON(out, reviewJSONRegex)
	if err != nil {
		return planReview{}, err
	}
	var review planReview
	if err := json.Unmarshal([]byte(raw), &review); err != nil {
		return planReview{}, fmt.Errorf("parse review: %w", err)
	}
	review.Verdict = strings.ToLower(strings.TrimSpace(review.Verdict))
	return review, nil
}

// checkTopicProgression marks the inbound topic exhausted when it was already
// answered recently but has since moved on: the keyword shows up in an
// assistant entry within the recent window, yet not in the last few entries.
func (p *Planner) checkTopicProgression(cctx *cycleContext) {
	if len(cctx.history) == 0 {
		return
	}
	topic := dominantKeyword(cctx.history[len(cctx.history)-1].Content)
	if topic == "" {
		return
	}

	hist := cctx.history[:len(cctx.history)-1]
	if len(hist) > recentOwnWindow {
		hist = hist[len(hist)-recentOwnWindow:]
	}

	const freshTail = 3
	tail := len(hist) - freshTail
	if tail < 0 {
		tail = 0
	}

	var passed bool
	for i, e := range hist {
		if e.Role != RoleAssistant || !strings.Contains(strings.ToLower(e.Content), topic) {
			continue
		}
		if i < tail {
			passed = true
		} else {
			return
		}
	}
	if passed {
		p.store.AddExhaustedTheme(topic)
		p.log.Debug().Str("topic", topic).Msg("topic already covered, marked exhausted")
	}
}

// extractJSON pulls the first JSON object matching re out of raw model
// output, tolerating prose around it.
func extractJSON(out string, re *regexp.Regexp) (string, error) {
	raw := strings.TrimSpace(out)
	if idx := re.FindStringIndex(raw); len(idx) > 0 {
		raw = raw[idx[0]:idx[1]]
	}
	if i := strings.Index(raw, "{"); i >= 0 {
		if j := strings.LastIndex(raw, "}"); j > i {
			return raw[i : j+1], nil
		}
	}
	return "", fmt.Errorf("no JSON object in response")
}
