package mind

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moltbot/internal/store"
)

func TestSweepDeliversDuePosts(t *testing.T) {
	s := newTestStore(t)
	cooldowns := NewCooldownManager(s, map[string]time.Duration{"bluesky": time.Hour})
	bsky := &fakeBluesky{configured: true}

	s.AddScheduledPost(store.ScheduledPost{
		Surface:     "bluesky",
		Content:     "overdue",
		ScheduledAt: time.Now().Add(-time.Minute),
	})
	s.AddScheduledPost(store.ScheduledPost{
		Surface:     "bluesky",
		Content:     "not yet",
		ScheduledAt: time.Now().Add(time.Hour),
	})

	sw := NewSweeper(s, cooldowns, bsky, &fakeMoltbook{configured: true}, time.Minute, zerolog.Nop())
	sw.sweep(context.Background())

	require.Equal(t, []string{"overdue"}, bsky.posts)

	remaining := s.ScheduledPosts()
	require.Len(t, remaining, 1)
	assert.Equal(t, "not yet", remaining[0].Content)
	assert.False(t, s.LastPostAt("bluesky").IsZero(), "delivery stamps the cooldown")
}

func TestSweepKeepsFailedPosts(t *testing.T) {
	s := newTestStore(t)
	cooldowns := NewCooldownManager(s, map[string]time.Duration{"bluesky": time.Hour})
	bsky := &fakeBluesky{configured: true, postErr: fmt.Errorf("down")}

	s.AddScheduledPost(store.ScheduledPost{
		Surface:     "bluesky",
		Content:     "retry me",
		ScheduledAt: time.Now().Add(-time.Minute),
	})

	sw := NewSweeper(s, cooldowns, bsky, &fakeMoltbook{configured: true}, time.Minute, zerolog.Nop())
	sw.sweep(context.Background())

	require.Len(t, s.ScheduledPosts(), 1, "failed posts stay queued")
}

func TestSweepRespectsCooldown(t *testing.T) {
	s := newTestStore(t)
	cooldowns := NewCooldownManager(s, map[string]time.Duration{"bluesky": time.Hour})
	bsky := &fakeBluesky{configured: true}
	s.RecordPostAt("bluesky", time.Now())

	s.AddScheduledPost(store.ScheduledPost{
		Surface:     "bluesky",
		Content:     "blocked by cooldown",
		ScheduledAt: time.Now().Add(-time.Minute),
	})

	sw := NewSweeper(s, cooldowns, bsky, &fakeMoltbook{configured: true}, time.Minute, zerolog.Nop())
	sw.sweep(context.Background())

	assert.Empty(t, bsky.posts)
	assert.Len(t, s.ScheduledPosts(), 1)
}
