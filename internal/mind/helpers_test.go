package mind

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"moltbot/internal/ai"
	"moltbot/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "state.json"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// stubProvider replays scripted responses in call order; the last response
// repeats once the script runs out. onCall fires before each response.
type stubProvider struct {
	mu        sync.Mutex
	responses []string
	calls     int
	users     []string
	onCall    func(n int)
	err       error
}

func (p *stubProvider) Complete(_ context.Context, messages []ai.Message, _ ai.Options) (string, error) {
	p.mu.Lock()
	n := p.calls
	p.calls++
	for _, m := range messages {
		if m.Role == "user" {
			p.users = append(p.users, m.Content)
		}
	}
	var out string
	switch {
	case len(p.responses) == 0:
	case n < len(p.responses):
		out = p.responses[n]
	default:
		out = p.responses[len(p.responses)-1]
	}
	hook := p.onCall
	p.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	if p.err != nil {
		return "", p.err
	}
	return out, nil
}

func (p *stubProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *stubProvider) userContents() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.users))
	copy(out, p.users)
	return out
}

// recordingSender captures what the orchestrator ships out. onSend fires
// while the send is still in flight.
type recordingSender struct {
	mu     sync.Mutex
	sends  []string
	onSend func(n int)
}

func (r *recordingSender) Send(_ context.Context, _ string, text string, _ [][]byte) error {
	r.mu.Lock()
	r.sends = append(r.sends, text)
	n := len(r.sends)
	hook := r.onSend
	r.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	return nil
}

func (r *recordingSender) sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.sends))
	copy(out, r.sends)
	return out
}
