// Package store is the agent's durable state: conversation history, mood,
// cooldown stamps, scheduled posts, pending directives, exhausted themes,
// and refusal counters. Every mutation goes through a store method and is
// flushed to disk immediately; components never share mutable state.
package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"moltbot/datastore"
)

const (
	historyLimit     = 50
	moodHistoryLimit = 100
)

const (
	keyMood         = "mood"
	keyCooldowns    = "cooldowns"
	keyScheduled    = "scheduled_posts"
	keyDirectives   = "pending_directives"
	keyInstructions = "instructions"
	keyThemes       = "exhausted_themes"
	keyRefusals     = "refusal_counters"
	convKeyPrefix   = "conv:"
)

type Store struct {
	ds  *datastore.DataStore
	log zerolog.Logger
	// One writer at a time across records; per-conversation contention is
	// negligible at this scale and a single mutex keeps read-modify-write
	// cycles atomic.
	mu sync.Mutex
}

func New(filePath string, log zerolog.Logger) (*Store, error) {
	cfg := datastore.DefaultConfig(filePath)
	cfg.Logger = log.With().Str("component", "datastore").Logger()
	ds, err := datastore.NewWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Store{ds: ds, log: log.With().Str("component", "store").Logger()}, nil
}

func (s *Store) Close() error {
	return s.ds.Close()
}

// get unmarshals the value at key into out. Returns false when absent.
func (s *Store) get(key string, out any) bool {
	data, exists := s.ds.Get(key)
	if !exists {
		return false
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("marshal stored value")
		return false
	}
	if err := json.Unmarshal(jsonData, out); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("unmarshal stored value")
		return false
	}
	return true
}

// put writes the value and flushes. A flush failure is logged and tolerated:
// the in-memory state stays authoritative for the current cycle and the next
// successful flush persists it.
func (s *Store) put(key string, value any) {
	s.ds.Add(key, value)
	if err := s.ds.SaveToFile(); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("store flush failed")
	}
}

func convKey(conversationKey string) string {
	return fmt.Sprintf("%s%s", convKeyPrefix, conversationKey)
}
