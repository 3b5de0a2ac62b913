package mind

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"moltbot/internal/ai"
	"moltbot/internal/bluesky"
	"moltbot/internal/moltbook"
	"moltbot/internal/search"
	"moltbot/internal/store"
)

// BlueskyClient is the slice of the bluesky client the executor needs.
type BlueskyClient interface {
	Configured() bool
	Post(ctx context.Context, text string) (string, error)
	Follow(ctx context.Context, did string) error
	Mute(ctx context.Context, actor string) error
}

// MoltbookClient is the slice of the moltbook client the executor needs.
type MoltbookClient interface {
	Configured() bool
	Post(ctx context.Context, text, embedURL string) (string, error)
}

type toolHandler func(ctx context.Context, a Action, cctx *cycleContext) string

// Executor runs a plan's actions in order against the external
// collaborators. Every known action yields exactly one result fragment,
// failures included; unknown tool tags are skipped without a trace in the
// fragments.
type Executor struct {
	provider  ai.Provider
	image     ai.ImageProvider
	searchers map[string]search.Client
	bluesky   BlueskyClient
	moltbook  MoltbookClient
	store     *store.Store
	mood      *MoodEngine
	cooldowns *CooldownManager
	log       zerolog.Logger

	handlers map[string]toolHandler
}

func NewExecutor(
	provider ai.Provider,
	image ai.ImageProvider,
	searchers map[string]search.Client,
	bsky BlueskyClient,
	molt MoltbookClient,
	s *store.Store,
	mood *MoodEngine,
	cooldowns *CooldownManager,
	log zerolog.Logger,
) *Executor {
	e := &Executor{
		provider:  provider,
		image:     image,
		searchers: searchers,
		bluesky:   bsky,
		moltbook:  molt,
		store:     s,
		mood:      mood,
		cooldowns: cooldowns,
		log:       log.With().Str("component", "executor").Logger(),
	}
	e.handlers = map[string]toolHandler{
		ToolWebSearch:        e.runSearch,
		ToolWikiLookup:       e.runSearch,
		ToolGenerateImage:    e.generateImage,
		ToolPostBluesky:      e.postBluesky,
		ToolPostMoltbook:     e.postMoltbook,
		ToolFollowUser:       e.followUser,
		ToolMuteUser:         e.muteUser,
		ToolPersistDirective: e.persistDirective,
		ToolUpdatePersona:    e.persistDirective,
		ToolUpdateMood:       e.updateMood,
	}
	return e
}

// Execute dispatches the actions in order and returns their fragments.
func (e *Executor) Execute(ctx context.Context, actions []Action, cctx *cycleContext) []string {
	var fragments []string
	for _, a := range actions {
		h, ok := e.handlers[a.Tool]
		if !ok {
			e.log.Debug().Str("tool", a.Tool).Msg("unknown tool, skipping")
			continue
		}
		frag := h(ctx, a, cctx)
		fragments = append(fragments, frag)
		e.log.Debug().Str("tool", a.Tool).Str("fragment", trimToChars(frag, 160)).Msg("action executed")
	}
	return fragments
}

// succeeded resets the surface's refusal counter after any action that
// actually went through.
func (e *Executor) succeeded(surface string) {
	e.store.ResetRefusals(surface)
}

func (e *Executor) runSearch(ctx context.Context, a Action, cctx *cycleContext) string {
	client, ok := e.searchers[a.Tool]
	if !ok || client == nil {
		return "[Failed to search: no search backend configured]"
	}

	results, err := client.Search(ctx, a.Query)
	if err != nil {
		return "[Failed to search: " + err.Error() + "]"
	}
	if len(results) == 0 {
		return fmt.Sprintf("[No results for %q]", a.Query)
	}

	best := e.pickBestResult(ctx, a.Query, results)
	e.succeeded(cctx.surface)
	return fmt.Sprintf("[Search result for %q: %s — %s (%s)]", a.Query, best.Title, best.Snippet, best.URL)
}

// pickBestResult delegates relevance to the model: it answers with the index
// of the most useful result. Anything unparseable falls back to the first.
func (e *Executor) pickBestResult(ctx context.Context, query string, results []search.Result) search.Result {
	if len(results) == 1 {
		return results[0]
	}

	var b strings.Builder
	b.WriteString("Query: " + query + "\nResults:\n")
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s — %s\n", i, r.Title, trimToChars(r.Snippet, 200))
	}
	b.WriteString("Answer with only the number of the single most relevant result.")

	out, err := e.provider.Complete(ctx, []ai.Message{
		{Role: "system", Content: "You rank search results. Reply with one number, nothing else."},
		{Role: "user", Content: b.String()},
	}, ai.Options{Temperature: 0, MaxTokens: 8})
	if err == nil {
		if idx, perr := strconv.Atoi(strings.TrimSpace(out)); perr == nil && idx >= 0 && idx < len(results) {
			return results[idx]
		}
	}
	return results[0]
}

func (e *Executor) generateImage(ctx context.Context, a Action, cctx *cycleContext) string {
	if e.image == nil {
		return "[Failed to generate image: no image backend configured]"
	}
	data, err := e.image.GenerateImage(ctx, a.Query)
	if err != nil {
		return "[Failed to generate image: " + err.Error() + "]"
	}
	cctx.images = append(cctx.images, data)
	e.succeeded(cctx.surface)
	return fmt.Sprintf("[Generated an image for %q, it will be attached to the reply]", a.Query)
}

func (e *Executor) postBluesky(ctx context.Context, a Action, _ *cycleContext) string {
	if e.bluesky == nil || !e.bluesky.Configured() {
		return "[Failed to post to bluesky: not configured]"
	}
	if !e.cooldowns.CanPostNow(bluesky.Surface) {
		p := e.cooldowns.Schedule(bluesky.Surface, a.Query, "")
		return fmt.Sprintf("[Post to bluesky deferred until %s, cooldown active]", p.ScheduledAt.Format(time.RFC3339))
	}

	uri, err := e.bluesky.Post(ctx, a.Query)
	if err != nil {
		return "[Failed to post to bluesky: " + err.Error() + "]"
	}
	e.cooldowns.RecordPost(bluesky.Surface, time.Now())
	e.succeeded(bluesky.Surface)
	return "[Posted to bluesky: " + uri + "]"
}

func (e *Executor) postMoltbook(ctx context.Context, a Action, _ *cycleContext) string {
	if e.moltbook == nil || !e.moltbook.Configured() {
		return "[Failed to post to moltbook: not configured]"
	}
	embed := a.Parameters["embed_url"]
	if !e.cooldowns.CanPostNow(moltbook.Surface) {
		p := e.cooldowns.Schedule(moltbook.Surface, a.Query, embed)
		return fmt.Sprintf("[Post to moltbook deferred until %s, cooldown active]", p.ScheduledAt.Format(time.RFC3339))
	}

	id, err := e.moltbook.Post(ctx, a.Query, embed)
	if err != nil {
		return "[Failed to post to moltbook: " + err.Error() + "]"
	}
	e.cooldowns.RecordPost(moltbook.Surface, time.Now())
	e.succeeded(moltbook.Surface)
	return "[Posted to moltbook: " + id + "]"
}

func (e *Executor) followUser(ctx context.Context, a Action, cctx *cycleContext) string {
	if e.bluesky == nil || !e.bluesky.Configured() {
		return "[Failed to follow: bluesky not configured]"
	}
	did := a.Parameters["did"]
	if did == "" {
		did = a.Query
	}
	if err := e.bluesky.Follow(ctx, did); err != nil {
		return "[Failed to follow " + did + ": " + err.Error() + "]"
	}
	e.succeeded(cctx.surface)
	return "[Now following " + did + "]"
}

func (e *Executor) muteUser(ctx context.Context, a Action, cctx *cycleContext) string {
	if e.bluesky == nil || !e.bluesky.Configured() {
		return "[Failed to mute: bluesky not configured]"
	}
	actor := a.Parameters["actor"]
	if actor == "" {
		actor = a.Query
	}
	if err := e.bluesky.Mute(ctx, actor); err != nil {
		return "[Failed to mute " + actor + ": " + err.Error() + "]"
	}
	e.succeeded(cctx.surface)
	return "[Muted " + actor + "]"
}

// persistDirective queues a behavioral instruction for operator approval; it
// takes effect only once approved. Handles both directive and persona
// updates, distinguished by the tool tag.
func (e *Executor) persistDirective(_ context.Context, a Action, cctx *cycleContext) string {
	kind := store.DirectiveTypeDirective
	if a.Tool == ToolUpdatePersona {
		kind = store.DirectiveTypePersona
	}
	id := e.store.AddPendingDirective(store.PendingDirective{
		Type:        kind,
		Platform:    a.Parameters["platform"],
		Instruction: a.Query,
	})
	e.succeeded(cctx.surface)
	return "[Queued " + kind + " for operator approval: " + id + "]"
}

func (e *Executor) updateMood(_ context.Context, a Action, cctx *cycleContext) string {
	var delta MoodDelta
	if v, ok := parseAxis(a.Parameters["valence"]); ok {
		delta.Valence = &v
	}
	if v, ok := parseAxis(a.Parameters["arousal"]); ok {
		delta.Arousal = &v
	}
	if v, ok := parseAxis(a.Parameters["stability"]); ok {
		delta.Stability = &v
	}
	delta.Set = a.Parameters["mode"] == "set"

	if delta.Valence == nil && delta.Arousal == nil && delta.Stability == nil {
		return "[Failed to update mood: no axes given]"
	}
	next := e.mood.Update(delta)
	e.succeeded(cctx.surface)
	return "[Mood is now " + next.Label + "]"
}

func parseAxis(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
