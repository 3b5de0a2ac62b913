package mind

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanPostNowRespectsCooldown(t *testing.T) {
	s := newTestStore(t)
	cm := NewCooldownManager(s, map[string]time.Duration{"bluesky": 90 * time.Minute})

	base := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	cm.now = func() time.Time { return base }

	assert.True(t, cm.CanPostNow("bluesky"), "no prior post")

	cm.RecordPost("bluesky", base)
	assert.False(t, cm.CanPostNow("bluesky"))

	cm.now = func() time.Time { return base.Add(89 * time.Minute) }
	assert.False(t, cm.CanPostNow("bluesky"))

	cm.now = func() time.Time { return base.Add(90 * time.Minute) }
	assert.True(t, cm.CanPostNow("bluesky"))
}

func TestSetCooldownAdjustsAtRuntime(t *testing.T) {
	s := newTestStore(t)
	cm := NewCooldownManager(s, map[string]time.Duration{"bluesky": 90 * time.Minute})

	base := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	cm.now = func() time.Time { return base.Add(10 * time.Minute) }
	cm.RecordPost("bluesky", base)

	assert.False(t, cm.CanPostNow("bluesky"))
	cm.SetCooldown("bluesky", 5*time.Minute)
	assert.True(t, cm.CanPostNow("bluesky"))
}

func TestScheduleDefersPastRemainingCooldown(t *testing.T) {
	s := newTestStore(t)
	cm := NewCooldownManager(s, map[string]time.Duration{"bluesky": 90 * time.Minute})

	base := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	cm.now = func() time.Time { return base }
	cm.RecordPost("bluesky", base.Add(-1*time.Minute))

	p := cm.Schedule("bluesky", "later", "")
	require.NotEmpty(t, p.ID)
	assert.True(t, p.ScheduledAt.Equal(base.Add(89*time.Minute)),
		"scheduled at %s, want %s", p.ScheduledAt, base.Add(89*time.Minute))

	posts := s.ScheduledPosts()
	require.Len(t, posts, 1)
	assert.Equal(t, "later", posts[0].Content)
}

func TestScheduleWithNoPriorPostIsImmediate(t *testing.T) {
	s := newTestStore(t)
	cm := NewCooldownManager(s, map[string]time.Duration{"moltbook": time.Hour})

	base := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	cm.now = func() time.Time { return base }

	p := cm.Schedule("moltbook", "now-ish", "")
	assert.True(t, p.ScheduledAt.Equal(base))
}
