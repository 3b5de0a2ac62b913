package mind

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"moltbot/internal/ai"
	"moltbot/internal/store"
)

const (
	maxDraftAttempts       = 5
	firstAttemptCandidates = 5
	baseTemperature        = 0.9
	temperatureStep        = 0.05
	maxTemperature         = 1.2
	scoreBar               = 0.55
	noveltyRejectStreak    = 3
	lengthBonusCapChars    = 600
)

// Combined score weights. Novelty dominates; length is a tie-breaker.
const (
	weightNovelty = 0.5
	weightMood    = 0.2
	weightLength  = 0.3
)

type candidate struct {
	text       string
	noveltySim float64
	score      float64
	banned     string
	prefixHit  bool
	rejected   bool
	reason     string
}

// DraftGenerator produces candidate replies and screens them. The outer loop
// is bounded by maxDraftAttempts; the first attempt fans out to
// firstAttemptCandidates parallel generations, later attempts generate one
// candidate each at slightly raised temperature.
type DraftGenerator struct {
	provider ai.Provider
	store    *store.Store
	log      zerolog.Logger
}

func NewDraftGenerator(provider ai.Provider, s *store.Store, log zerolog.Logger) *DraftGenerator {
	return &DraftGenerator{provider: provider, store: s, log: log.With().Str("component", "draft").Logger()}
}

// Respond returns the final reply text, or "" when even the fallback policy
// found nothing sendable. It always terminates within the attempt cap.
func (d *DraftGenerator) Respond(ctx context.Context, persona string, instructions []string, cctx *cycleContext) string {
	recentOwn := d.store.RecentOwnMessages(cctx.key, recentOwnWindow)

	var rejectedPool []candidate
	noveltyStreak := 0
	streakTheme := ""

	for attempt := 1; attempt <= maxDraftAttempts; attempt++ {
		texts := d.generate(ctx, persona, instructions, cctx, attempt)
		if len(texts) == 0 {
			continue
		}

		cands := d.screen(texts, recentOwn, cctx.mood)

		var survivors []candidate
		for _, c := range cands {
			if !c.rejected {
				survivors = append(survivors, c)
				continue
			}
			rejectedPool = append(rejectedPool, c)
			cctx.avoidNotes = appendAvoidNote(cctx.avoidNotes, c)

			if c.reason == "novelty" {
				theme := strings.TrimSpace(themeOf(cctx, c.text))
				if theme != "" && theme == streakTheme {
					noveltyStreak++
				} else {
					streakTheme = theme
					noveltyStreak = 1
				}
				if noveltyStreak >= noveltyRejectStreak && streakTheme != "" {
					d.store.AddExhaustedTheme(streakTheme)
					d.log.Info().Str("theme", streakTheme).Msg("theme exhausted after repeated novelty rejections")
					noveltyStreak = 0
				}
			} else {
				noveltyStreak = 0
				streakTheme = ""
			}
		}

		if len(survivors) == 0 {
			d.log.Debug().Int("attempt", attempt).Int("rejected", len(cands)).Msg("no candidate survived")
			continue
		}

		best, second := topTwo(survivors)
		if second != nil && best.score >= scoreBar && second.score >= scoreBar {
			if merged := d.synthesize(ctx, best.text, second.text); merged != "" {
				if containsBannedPhrase(merged) == "" {
					d.log.Debug().Int("attempt", attempt).Msg("synthesized final reply from two candidates")
					return merged
				}
			}
		}
		d.log.Debug().Int("attempt", attempt).Float64("score", best.score).Msg("picked best candidate")
		return best.text
	}

	return d.leastBad(rejectedPool)
}

// generate produces the attempt's raw texts. Attempt 1 fans out in parallel;
// individual failures just shrink the batch.
func (d *DraftGenerator) generate(ctx context.Context, persona string, instructions []string, cctx *cycleContext, attempt int) []string {
	temp := baseTemperature + float64(attempt-1)*temperatureStep
	if temp > maxTemperature {
		temp = maxTemperature
	}
	opts := ai.Options{Temperature: temp, Avoid: cctx.avoidNotes}
	msgs := buildMessages(persona, instructions, cctx)

	n := 1
	if attempt == 1 {
		n = firstAttemptCandidates
	}

	var mu sync.Mutex
	var texts []string
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			out, err := d.provider.Complete(gctx, msgs, opts)
			if err != nil || strings.TrimSpace(out) == "" {
				return nil
			}
			mu.Lock()
			texts = append(texts, strings.TrimSpace(out))
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return texts
}

// screen scores and hard-gates every candidate against the recent own output.
func (d *DraftGenerator) screen(texts []string, recentOwn []string, mood store.MoodState) []candidate {
	cands := make([]candidate, 0, len(texts))
	for _, text := range texts {
		c := candidate{text: text}
		c.noveltySim = maxSimilarity(text, recentOwn)
		c.banned = containsBannedPhrase(text)
		for _, own := range recentOwn {
			if sharesPrefix(text, own, prefixTokenCount) {
				c.prefixHit = true
				break
			}
		}

		switch {
		case c.banned != "":
			c.rejected, c.reason = true, "banned"
		case c.prefixHit:
			c.rejected, c.reason = true, "prefix"
		case c.noveltySim >= similarityThreshold:
			c.rejected, c.reason = true, "novelty"
		}

		novelty := 1 - c.noveltySim
		length := float64(len(text)) / lengthBonusCapChars
		if length > 1 {
			length = 1
		}
		c.score = weightNovelty*novelty + weightMood*moodAlignment(text, mood) + weightLength*length
		cands = append(cands, c)
	}
	return cands
}

// moodAlignment is a cheap tone check: high arousal favors exclamatory,
// punchy text; negative valence disfavors it. Mid-range moods are indifferent.
func moodAlignment(text string, mood store.MoodState) float64 {
	excl := float64(strings.Count(text, "!"))
	punch := excl / (1 + float64(len(text))/200)
	if punch > 1 {
		punch = 1
	}

	switch {
	case mood.Arousal > 0.3:
		return punch
	case mood.Valence < -0.3:
		return 1 - punch
	default:
		return 0.5
	}
}

// synthesize asks the backend to merge the distinct substance of the two
// best drafts into one reply. Returns "" on failure.
func (d *DraftGenerator) synthesize(ctx context.Context, a, b string) string {
	out, err := d.provider.Complete(ctx, []ai.Message{
		{Role: "system", Content: "Merge the two drafts below into one coherent reply in the same voice. Keep every distinct substantive point, drop repetition, do not mention that there were drafts."},
		{Role: "user", Content: "Draft A:\n" + a + "\n\nDraft B:\n" + b},
	}, ai.Options{Temperature: 0.5})
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// leastBad picks from the rejected pool once attempts are exhausted: a
// prefix-flawed reply beats silence, but a banned-phrase reply never ships.
func (d *DraftGenerator) leastBad(pool []candidate) string {
	var best *candidate
	tier := func(c candidate) int {
		switch {
		case c.banned == "" && !c.prefixHit:
			return 0
		case c.banned == "":
			return 1
		default:
			return 2
		}
	}
	for i := range pool {
		c := &pool[i]
		if tier(*c) == 2 {
			continue
		}
		if best == nil || tier(*c) < tier(*best) || (tier(*c) == tier(*best) && c.score > best.score) {
			best = c
		}
	}
	if best == nil {
		d.log.Warn().Int("pool", len(pool)).Msg("draft exhausted with nothing sendable")
		return ""
	}
	d.log.Info().Str("reason", best.reason).Msg("falling back to least-bad rejected candidate")
	return best.text
}

// themeOf tags a rejection with the plan's theme when one exists, otherwise
// the candidate's dominant keyword.
func themeOf(cctx *cycleContext, text string) string {
	if cctx.plan != nil && cctx.plan.Strategy.Theme != "" {
		return strings.ToLower(cctx.plan.Strategy.Theme)
	}
	return dominantKeyword(text)
}

func topTwo(cands []candidate) (candidate, *candidate) {
	best := cands[0]
	var second *candidate
	for i := 1; i < len(cands); i++ {
		c := cands[i]
		if c.score > best.score {
			prev := best
			best = c
			second = &prev
		} else if second == nil || c.score > second.score {
			cc := c
			second = &cc
		}
	}
	return best, second
}

func appendAvoidNote(notes []string, c candidate) []string {
	var note string
	switch c.reason {
	case "banned":
		note = "the phrase '" + c.banned + "'"
	case "prefix":
		note = "opening with '" + firstTokens(c.text, prefixTokenCount) + "'"
	case "novelty":
		note = "repeating '" + trimToChars(c.text, 80) + "'"
	default:
		return notes
	}
	for _, n := range notes {
		if n == note {
			return notes
		}
	}
	return append(notes, note)
}

func firstTokens(s string, n int) string {
	t := tokenize(s)
	if len(t) > n {
		t = t[:n]
	}
	return strings.Join(t, " ")
}
