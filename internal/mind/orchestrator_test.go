package mind

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moltbot/internal/store"
)

func newTestOrchestrator(t *testing.T, p *stubProvider, sender Sender) (*Orchestrator, *store.Store) {
	t.Helper()
	s := newTestStore(t)
	mood := NewMoodEngine(s)
	planner := NewPlanner(p, s, mood, zerolog.Nop())
	executor := NewExecutor(p, nil, nil, nil, nil, s, mood, NewCooldownManager(s, nil), zerolog.Nop())
	drafts := NewDraftGenerator(p, s, zerolog.Nop())
	orch := NewOrchestrator(s, NewInterruptController(), planner, executor, drafts, mood, sender, "a persona", zerolog.Nop())
	return orch, s
}

func TestHandleCasualSendsReply(t *testing.T) {
	reply := "a perfectly reasonable answer with some substance to it"
	p := &stubProvider{responses: []string{reply, reply, reply, reply, reply, "merged version of the reply with substance"}}
	sender := &recordingSender{}
	orch, s := newTestOrchestrator(t, p, sender)

	orch.Handle(context.Background(), Request{
		Key:     "ch:general",
		Surface: "discord",
		Inbound: store.HistoryEntry{Role: RoleUser, Content: "what do you think"},
	})

	require.Len(t, sender.sent(), 1)

	hist := s.History("ch:general", 0)
	require.Len(t, hist, 2)
	assert.Equal(t, RoleUser, hist[0].Role)
	assert.Equal(t, RoleAssistant, hist[1].Role)
	assert.Equal(t, sender.sent()[0], hist[1].Content)
}

func TestHandleInterruptRestartsWithBothMessages(t *testing.T) {
	reply := "one single considered answer covering everything asked"
	p := &stubProvider{responses: []string{reply}}
	sender := &recordingSender{}
	orch, s := newTestOrchestrator(t, p, sender)

	// The second message lands while the first cycle is mid-generation: it
	// must only mark the cycle interrupted, and the restart must fold it in.
	var once sync.Once
	p.onCall = func(int) {
		once.Do(func() {
			orch.Handle(context.Background(), Request{
				Key:     "dm:u1",
				Surface: "discord",
				Inbound: store.HistoryEntry{Role: RoleUser, Content: "wait, actually a second thing"},
			})
		})
	}

	orch.Handle(context.Background(), Request{
		Key:     "dm:u1",
		Surface: "discord",
		Inbound: store.HistoryEntry{Role: RoleUser, Content: "first question"},
	})

	require.Len(t, sender.sent(), 1, "exactly one reply despite two inbound messages")

	hist := s.History("dm:u1", 0)
	require.Len(t, hist, 3)
	assert.Equal(t, "first question", hist[0].Content)
	assert.Equal(t, "wait, actually a second thing", hist[1].Content)
	assert.Equal(t, RoleAssistant, hist[2].Role)
}

func TestHandleMessageDuringSendGetsAnswered(t *testing.T) {
	reply := "an answer that was already on its way out the door"
	p := &stubProvider{responses: []string{reply}}
	sender := &recordingSender{}
	orch, s := newTestOrchestrator(t, p, sender)

	// The second message lands while the first reply is being delivered. It
	// is too late to interrupt the send, so the cycle restarts and answers it.
	var once sync.Once
	sender.onSend = func(int) {
		once.Do(func() {
			orch.Handle(context.Background(), Request{
				Key:     "dm:u1",
				Surface: "discord",
				Inbound: store.HistoryEntry{Role: RoleUser, Content: "one more thing before you finish"},
			})
		})
	}

	orch.Handle(context.Background(), Request{
		Key:     "dm:u1",
		Surface: "discord",
		Inbound: store.HistoryEntry{Role: RoleUser, Content: "first question"},
	})

	require.Len(t, sender.sent(), 2, "the late message gets its own reply")

	hist := s.History("dm:u1", 0)
	require.Len(t, hist, 4)
	assert.Equal(t, "first question", hist[0].Content)
	assert.Equal(t, "one more thing before you finish", hist[1].Content)
	assert.Equal(t, RoleAssistant, hist[2].Role)
	assert.Equal(t, RoleAssistant, hist[3].Role)
}

func TestHandleDeepAllRefusalsStaysSilent(t *testing.T) {
	p := &stubProvider{responses: []string{
		teaPlanJSON, refuseJSON,
		teaPlanJSON, refuseJSON,
		teaPlanJSON, refuseJSON,
	}}
	sender := &recordingSender{}
	orch, s := newTestOrchestrator(t, p, sender)

	orch.Handle(context.Background(), Request{
		Key:     "dm:u1",
		Surface: "discord",
		Deep:    true,
		Inbound: store.HistoryEntry{Role: RoleUser, Content: "post something somewhere"},
	})

	assert.Empty(t, sender.sent(), "a fully refused cycle ends in silence")
	assert.Equal(t, 3, s.RefusalCount("discord"))

	hist := s.History("dm:u1", 0)
	require.Len(t, hist, 1, "only the inbound message is recorded")
}

func TestHandleDeepRunsPlanActions(t *testing.T) {
	reply := "an answer that works the plan fragments into prose nicely"
	p := &stubProvider{responses: []string{
		`{"intent": "reflect", "strategy": {"angle": "calm", "tone": "soft", "theme": "rivers"}, "actions": [{"tool": "no_such_tool"}]}`,
		acceptJSON,
		reply,
	}}
	sender := &recordingSender{}
	orch, s := newTestOrchestrator(t, p, sender)

	orch.Handle(context.Background(), Request{
		Key:     "dm:u1",
		Surface: "discord",
		Deep:    true,
		Inbound: store.HistoryEntry{Role: RoleUser, Content: "thoughts on rivers"},
	})

	require.Len(t, sender.sent(), 1)
	assert.Equal(t, 2, len(s.History("dm:u1", 0)))
}
