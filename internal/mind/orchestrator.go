package mind

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"moltbot/internal/store"
)

// Restarts only happen when a newer message superseded the cycle, so the cap
// exists purely to stop a pathological flood from spinning one goroutine.
const maxRestarts = 5

// Sender delivers the finished reply back to the conversation's surface.
type Sender interface {
	Send(ctx context.Context, key, text string, images [][]byte) error
}

// Request is one inbound event for the orchestrator.
type Request struct {
	Key     string
	Surface string
	// Deep conversations get the full plan-then-act path; casual ones go
	// straight to drafting with no tools.
	Deep    bool
	Inbound store.HistoryEntry
}

// Orchestrator sequences one response cycle per inbound event: planning,
// tool execution, drafting, sending. Interrupt checks sit between every
// stage; a hit discards the cycle and restarts from the freshest history.
type Orchestrator struct {
	store      *store.Store
	interrupts *InterruptController
	planner    *Planner
	executor   *Executor
	drafts     *DraftGenerator
	mood       *MoodEngine
	sender     Sender
	persona    string
	log        zerolog.Logger
}

func NewOrchestrator(
	s *store.Store,
	interrupts *InterruptController,
	planner *Planner,
	executor *Executor,
	drafts *DraftGenerator,
	mood *MoodEngine,
	sender Sender,
	persona string,
	log zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		store:      s,
		interrupts: interrupts,
		planner:    planner,
		executor:   executor,
		drafts:     drafts,
		mood:       mood,
		sender:     sender,
		persona:    persona,
		log:        log.With().Str("component", "orchestrator").Logger(),
	}
}

// Handle processes one inbound message. The inbound entry is appended to
// history before any generation, so a restart always sees it. If a cycle is
// already in flight for the key, this only marks it interrupted; the running
// cycle restarts with the new message folded in.
func (o *Orchestrator) Handle(ctx context.Context, req Request) {
	if req.Inbound.Timestamp.IsZero() {
		req.Inbound.Timestamp = time.Now()
	}
	o.store.AppendHistory(req.Key, req.Inbound)

	if !o.interrupts.StartOrInterrupt(req.Key) {
		o.log.Debug().Str("key", req.Key).Msg("generation in flight, marked interrupted")
		return
	}
	defer o.interrupts.Clear(req.Key)

	for restart := 0; restart <= maxRestarts; restart++ {
		done := o.cycle(ctx, req)
		if done {
			return
		}
		// Interrupted: drop everything and go again on fresh history.
		o.interrupts.ClearInterrupt(req.Key)
		o.log.Debug().Str("key", req.Key).Int("restart", restart+1).Msg("cycle interrupted, restarting")
	}
	o.log.Warn().Str("key", req.Key).Msg("restart cap reached, giving up on this event")
}

// cycle runs one full pass. It returns false only when an interrupt was
// detected and the caller should restart; every other outcome, including
// silence, is final.
func (o *Orchestrator) cycle(ctx context.Context, req Request) bool {
	interrupted := func() bool { return o.interrupts.IsInterrupted(req.Key) }

	cctx := &cycleContext{
		key:     req.Key,
		surface: req.Surface,
		history: o.store.History(req.Key, 0),
		mood:    o.mood.Current(),
	}

	if interrupted() {
		return false
	}

	if req.Deep {
		plan, outcome := o.planner.Plan(ctx, cctx, interrupted)
		switch outcome {
		case PlanInterrupted:
			return false
		case PlanExhausted:
			o.log.Info().Str("key", req.Key).Msg("all plan attempts refused, no action taken")
			return true
		}
		cctx.plan = plan

		if interrupted() {
			return false
		}
		cctx.fragments = o.executor.Execute(ctx, plan.Actions, cctx)
	}

	if interrupted() {
		return false
	}

	instructions := o.store.Instructions(req.Surface)
	text := o.drafts.Respond(ctx, o.persona, instructions, cctx)
	if text == "" {
		o.log.Info().Str("key", req.Key).Msg("nothing sendable, staying silent")
		return true
	}

	if interrupted() {
		return false
	}

	if err := o.sender.Send(ctx, req.Key, text, cctx.images); err != nil {
		o.log.Error().Err(err).Str("key", req.Key).Msg("send failed")
		return true
	}

	o.store.AppendHistory(req.Key, store.HistoryEntry{
		Role:      RoleAssistant,
		Content:   text,
		Timestamp: time.Now(),
	})
	// A message that landed while the send was in flight still gets a reply:
	// restart so the next cycle folds it in.
	return !interrupted()
}
