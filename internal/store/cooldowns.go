package store

import "time"

// LastPostAt returns the last recorded post time for a surface, or the zero
// time when the surface has never posted.
func (s *Store) LastPostAt(surface string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamps := map[string]time.Time{}
	s.get(keyCooldowns, &stamps)
	return stamps[surface]
}

// RecordPostAt stamps the last post time for a surface.
func (s *Store) RecordPostAt(surface string, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamps := map[string]time.Time{}
	s.get(keyCooldowns, &stamps)
	stamps[surface] = t
	s.put(keyCooldowns, stamps)
}
