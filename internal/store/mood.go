package store

type moodRecord struct {
	Current MoodState   `json:"current"`
	History []MoodState `json:"history"`
}

// Mood returns the current mood state. The zero value is a neutral mood.
func (s *Store) Mood() MoodState {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec moodRecord
	s.get(keyMood, &rec)
	return rec.Current
}

// SetMood replaces the current mood and appends it to the observational
// history log. The log is bounded and never read back for control
// decisions, only for reporting.
func (s *Store) SetMood(m MoodState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec moodRecord
	s.get(keyMood, &rec)

	rec.Current = m
	rec.History = append(rec.History, m)
	if len(rec.History) > moodHistoryLimit {
		rec.History = rec.History[len(rec.History)-moodHistoryLimit:]
	}
	s.put(keyMood, &rec)
}

// MoodHistory returns the observational mood log, oldest first.
func (s *Store) MoodHistory() []MoodState {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec moodRecord
	s.get(keyMood, &rec)
	out := make([]MoodState, len(rec.History))
	copy(out, rec.History)
	return out
}
