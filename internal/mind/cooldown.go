package mind

import (
	"sync"
	"time"

	"moltbot/internal/store"
)

// CooldownManager enforces minimum intervals between posts per output
// surface. Violations never fail; they defer into the scheduled-post queue.
type CooldownManager struct {
	store *store.Store

	mu        sync.RWMutex
	cooldowns map[string]time.Duration

	now func() time.Time
}

func NewCooldownManager(s *store.Store, cooldowns map[string]time.Duration) *CooldownManager {
	cd := make(map[string]time.Duration, len(cooldowns))
	for k, v := range cooldowns {
		cd[k] = v
	}
	return &CooldownManager{
		store:     s,
		cooldowns: cd,
		now:       time.Now,
	}
}

// Cooldown returns the configured interval for a surface (zero if none).
func (c *CooldownManager) Cooldown(surface string) time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cooldowns[surface]
}

// SetCooldown adjusts a surface's interval at runtime.
func (c *CooldownManager) SetCooldown(surface string, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cooldowns[surface] = d
}

// CanPostNow reports whether the surface's cooldown has elapsed.
func (c *CooldownManager) CanPostNow(surface string) bool {
	last := c.store.LastPostAt(surface)
	if last.IsZero() {
		return true
	}
	return c.now().Sub(last) >= c.Cooldown(surface)
}

// RecordPost stamps the surface's last post time.
func (c *CooldownManager) RecordPost(surface string, t time.Time) {
	c.store.RecordPostAt(surface, t)
}

// Schedule queues a post for when the surface's cooldown will have elapsed
// and returns the queued record. The periodic sweep re-attempts it.
func (c *CooldownManager) Schedule(surface, content, embed string) store.ScheduledPost {
	now := c.now()
	at := now
	if last := c.store.LastPostAt(surface); !last.IsZero() {
		if ready := last.Add(c.Cooldown(surface)); ready.After(at) {
			at = ready
		}
	}

	p := store.ScheduledPost{
		Surface:     surface,
		Content:     content,
		Embed:       embed,
		CreatedAt:   now,
		ScheduledAt: at,
	}
	p.ID = c.store.AddScheduledPost(p)
	return p
}
