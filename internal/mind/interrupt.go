package mind

import "sync"

// InterruptController tracks, per conversation, whether a generation is in
// flight and whether a newer inbound message superseded it. One explicit
// keyed table instead of flags scattered across call sites.
type InterruptController struct {
	mu          sync.Mutex
	generating  map[string]bool
	interrupted map[string]bool
}

func NewInterruptController() *InterruptController {
	return &InterruptController{
		generating:  make(map[string]bool),
		interrupted: make(map[string]bool),
	}
}

// RegisterStart marks a conversation as generating.
func (ic *InterruptController) RegisterStart(key string) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	ic.generating[key] = true
}

// StartOrInterrupt claims the key for a new cycle in one lock acquisition.
// When a generation is already in flight it marks it interrupted instead and
// reports false; two racing callers can never both claim the same key.
func (ic *InterruptController) StartOrInterrupt(key string) bool {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	if ic.generating[key] {
		ic.interrupted[key] = true
		return false
	}
	ic.generating[key] = true
	return true
}

// IsGenerating reports whether a generation is in flight for the key.
func (ic *InterruptController) IsGenerating(key string) bool {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.generating[key]
}

// MarkInterrupted flags an in-flight generation as superseded. Boolean, not
// counted: marking twice equals marking once.
func (ic *InterruptController) MarkInterrupted(key string) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	if ic.generating[key] {
		ic.interrupted[key] = true
	}
}

// IsInterrupted reports whether the current cycle for key was superseded.
func (ic *InterruptController) IsInterrupted(key string) bool {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.interrupted[key]
}

// ClearInterrupt resets only the interrupted flag, keeping the generation
// marker. Called when a cycle restarts after an interrupt.
func (ic *InterruptController) ClearInterrupt(key string) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	delete(ic.interrupted, key)
}

// Clear removes both markers. Called on every exit path of a cycle.
func (ic *InterruptController) Clear(key string) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	delete(ic.generating, key)
	delete(ic.interrupted, key)
}
