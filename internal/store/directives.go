package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AddPendingDirective queues a directive for operator review and returns
// its id.
func (s *Store) AddPendingDirective(d PendingDirective) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Timestamp.IsZero() {
		d.Timestamp = time.Now()
	}
	if d.Type == "" {
		d.Type = DirectiveTypeDirective
	}

	var pending []PendingDirective
	s.get(keyDirectives, &pending)
	pending = append(pending, d)
	s.put(keyDirectives, pending)
	return d.ID
}

// PendingDirectives returns all directives awaiting review, oldest first.
func (s *Store) PendingDirectives() []PendingDirective {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []PendingDirective
	s.get(keyDirectives, &pending)
	return pending
}

// ApproveDirective promotes a pending directive into the permanent
// instruction set and removes it from the queue.
func (s *Store) ApproveDirective(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []PendingDirective
	s.get(keyDirectives, &pending)

	idx := -1
	for i, d := range pending {
		if d.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("no pending directive %s", id)
	}
	d := pending[idx]

	var instructions []Instruction
	s.get(keyInstructions, &instructions)
	instructions = append(instructions, Instruction{
		Type:       d.Type,
		Platform:   d.Platform,
		Text:       d.Instruction,
		ApprovedAt: time.Now(),
	})
	s.put(keyInstructions, instructions)

	pending = append(pending[:idx], pending[idx+1:]...)
	s.put(keyDirectives, pending)
	return nil
}

// RejectDirective discards a pending directive.
func (s *Store) RejectDirective(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []PendingDirective
	s.get(keyDirectives, &pending)

	for i, d := range pending {
		if d.ID == id {
			pending = append(pending[:i], pending[i+1:]...)
			s.put(keyDirectives, pending)
			return nil
		}
	}
	return fmt.Errorf("no pending directive %s", id)
}

// EditDirective replaces the instruction text of a pending directive in
// place; it stays pending.
func (s *Store) EditDirective(id, instruction string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []PendingDirective
	s.get(keyDirectives, &pending)

	for i := range pending {
		if pending[i].ID == id {
			pending[i].Instruction = instruction
			s.put(keyDirectives, pending)
			return nil
		}
	}
	return fmt.Errorf("no pending directive %s", id)
}

// Instructions returns the approved instruction texts for a platform.
// Platform-scoped instructions apply only to their platform; unscoped ones
// and persona updates apply everywhere.
func (s *Store) Instructions(platform string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var instructions []Instruction
	s.get(keyInstructions, &instructions)

	var out []string
	for _, ins := range instructions {
		if ins.Platform == "" || ins.Platform == platform {
			out = append(out, ins.Text)
		}
	}
	return out
}
