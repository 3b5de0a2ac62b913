package mind

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"moltbot/internal/bluesky"
	"moltbot/internal/moltbook"
	"moltbot/internal/store"
)

// Sweeper periodically re-attempts scheduled posts once their time and the
// surface cooldown both allow it. Failed attempts stay queued for the next
// pass.
type Sweeper struct {
	store     *store.Store
	cooldowns *CooldownManager
	bluesky   BlueskyClient
	moltbook  MoltbookClient
	interval  time.Duration
	log       zerolog.Logger
}

func NewSweeper(s *store.Store, cooldowns *CooldownManager, bsky BlueskyClient, molt MoltbookClient, interval time.Duration, log zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		store:     s,
		cooldowns: cooldowns,
		bluesky:   bsky,
		moltbook:  molt,
		interval:  interval,
		log:       log.With().Str("component", "sweep").Logger(),
	}
}

// Run loops until the context is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	for _, p := range s.store.DueScheduledPosts(time.Now()) {
		if !s.cooldowns.CanPostNow(p.Surface) {
			continue
		}

		var err error
		switch p.Surface {
		case bluesky.Surface:
			if s.bluesky == nil || !s.bluesky.Configured() {
				continue
			}
			_, err = s.bluesky.Post(ctx, p.Content)
		case moltbook.Surface:
			if s.moltbook == nil || !s.moltbook.Configured() {
				continue
			}
			_, err = s.moltbook.Post(ctx, p.Content, p.Embed)
		default:
			s.log.Warn().Str("surface", p.Surface).Str("id", p.ID).Msg("dropping scheduled post for unknown surface")
			s.store.RemoveScheduledPost(p.ID)
			continue
		}

		if err != nil {
			s.log.Warn().Err(err).Str("surface", p.Surface).Str("id", p.ID).Msg("scheduled post failed, will retry")
			continue
		}

		s.cooldowns.RecordPost(p.Surface, time.Now())
		s.store.RemoveScheduledPost(p.ID)
		s.log.Info().Str("surface", p.Surface).Str("id", p.ID).Msg("scheduled post delivered")
	}
}
