package store

type conversationRecord struct {
	History []HistoryEntry `json:"history"`
}

// AppendHistory appends an entry to a conversation, evicting the oldest
// entries beyond the history limit.
func (s *Store) AppendHistory(conversationKey string, entry HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec conversationRecord
	s.get(convKey(conversationKey), &rec)

	rec.History = append(rec.History, entry)
	if len(rec.History) > historyLimit {
		rec.History = rec.History[len(rec.History)-historyLimit:]
	}
	s.put(convKey(conversationKey), &rec)
}

// History returns up to limit most recent entries, oldest first.
// limit <= 0 returns everything retained.
func (s *Store) History(conversationKey string, limit int) []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec conversationRecord
	s.get(convKey(conversationKey), &rec)

	h := rec.History
	if limit > 0 && len(h) > limit {
		h = h[len(h)-limit:]
	}
	out := make([]HistoryEntry, len(h))
	copy(out, h)
	return out
}

// RecentOwnMessages returns the agent's own last n messages in the
// conversation, newest last. Used by the quality gate's repetition checks.
func (s *Store) RecentOwnMessages(conversationKey string, n int) []string {
	entries := s.History(conversationKey, 0)
	var out []string
	for _, e := range entries {
		if e.Role == "assistant" {
			out = append(out, e.Content)
		}
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}
