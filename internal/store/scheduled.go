package store

import (
	"time"

	"github.com/google/uuid"
)

// AddScheduledPost queues a deferred post and returns its id.
func (s *Store) AddScheduledPost(p ScheduledPost) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	var posts []ScheduledPost
	s.get(keyScheduled, &posts)
	posts = append(posts, p)
	s.put(keyScheduled, posts)
	return p.ID
}

// DueScheduledPosts returns posts whose scheduled time has passed.
func (s *Store) DueScheduledPosts(now time.Time) []ScheduledPost {
	s.mu.Lock()
	defer s.mu.Unlock()

	var posts []ScheduledPost
	s.get(keyScheduled, &posts)

	var due []ScheduledPost
	for _, p := range posts {
		if !p.ScheduledAt.After(now) {
			due = append(due, p)
		}
	}
	return due
}

// RemoveScheduledPost deletes a queued post by id.
func (s *Store) RemoveScheduledPost(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var posts []ScheduledPost
	s.get(keyScheduled, &posts)

	kept := posts[:0]
	for _, p := range posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.put(keyScheduled, kept)
}

// ScheduledPosts returns the whole queue, for reporting.
func (s *Store) ScheduledPosts() []ScheduledPost {
	s.mu.Lock()
	defer s.mu.Unlock()

	var posts []ScheduledPost
	s.get(keyScheduled, &posts)
	return posts
}
