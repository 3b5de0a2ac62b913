package store

type refusalRecord struct {
	Global    int            `json:"global"`
	BySurface map[string]int `json:"by_surface"`
}

// IncrementRefusal bumps the surface and global refusal counters and returns
// the new surface count.
func (s *Store) IncrementRefusal(surface string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec refusalRecord
	s.get(keyRefusals, &rec)
	if rec.BySurface == nil {
		rec.BySurface = map[string]int{}
	}
	rec.Global++
	rec.BySurface[surface]++
	s.put(keyRefusals, &rec)
	return rec.BySurface[surface]
}

// ResetRefusals zeroes the counter for a surface after a successfully
// executed action.
func (s *Store) ResetRefusals(surface string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec refusalRecord
	s.get(keyRefusals, &rec)
	if rec.BySurface == nil || rec.BySurface[surface] == 0 {
		return
	}
	rec.BySurface[surface] = 0
	s.put(keyRefusals, &rec)
}

// RefusalCount returns the current counter for a surface.
func (s *Store) RefusalCount(surface string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec refusalRecord
	s.get(keyRefusals, &rec)
	return rec.BySurface[surface]
}

// GlobalRefusalCount returns the all-surfaces counter.
func (s *Store) GlobalRefusalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec refusalRecord
	s.get(keyRefusals, &rec)
	return rec.Global
}
