package store

import (
	"strings"
	"time"
)

// ThemeWindow is how long a theme stays excluded from selection.
const ThemeWindow = 6 * time.Hour

// AddExhaustedTheme records a theme as recently used. Duplicate themes
// refresh the timestamp.
func (s *Store) AddExhaustedTheme(theme string) {
	theme = strings.TrimSpace(strings.ToLower(theme))
	if theme == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var themes []ExhaustedTheme
	s.get(keyThemes, &themes)

	now := time.Now()
	for i := range themes {
		if themes[i].Theme == theme {
			themes[i].Timestamp = now
			s.put(keyThemes, themes)
			return
		}
	}
	themes = append(themes, ExhaustedTheme{Theme: theme, Timestamp: now})
	s.put(keyThemes, themes)
}

// ExhaustedThemes returns currently excluded themes, pruning entries older
// than the window as a side effect.
func (s *Store) ExhaustedThemes(now time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var themes []ExhaustedTheme
	s.get(keyThemes, &themes)

	cutoff := now.Add(-ThemeWindow)
	kept := themes[:0]
	var out []string
	for _, t := range themes {
		if t.Timestamp.After(cutoff) {
			kept = append(kept, t)
			out = append(out, t.Theme)
		}
	}
	if len(kept) != len(themes) {
		s.put(keyThemes, kept)
	}
	return out
}

// IsThemeExhausted reports whether a theme is inside the exclusion window.
func (s *Store) IsThemeExhausted(theme string, now time.Time) bool {
	theme = strings.TrimSpace(strings.ToLower(theme))
	for _, t := range s.ExhaustedThemes(now) {
		if t == theme {
			return true
		}
	}
	return false
}
