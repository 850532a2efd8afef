package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/bashoori/leadbot/internal/model/conversation"
)

// Store keeps per-user conversation sessions in memory. Sessions are
// volatile on purpose: the flow is three messages long and losing it on
// restart just means the user starts over. A single mutex guards the whole
// map; throughput is a handful of webhook deliveries a minute.
type Store struct {
	mu       sync.Mutex
	sessions map[string]conversation.Session
	now      func() time.Time
}

// NewStore bootstraps an empty in-memory session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]conversation.Session),
		now:      time.Now,
	}
}

// Get returns the session for userID, if any.
func (s *Store) Get(userID string) (conversation.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	return sess, ok
}

// Set overwrites the session for userID wholesale, stamping LastTouched.
// Callers never set the timestamp themselves.
func (s *Store) Set(userID string, sess conversation.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.UserID = userID
	sess.LastTouched = s.now()
	s.sessions[userID] = sess
}

// Delete removes the session for userID; no-op when absent.
func (s *Store) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts every session untouched for longer than ttl and returns the
// evicted user ids. Expired ids are collected first so the loop never
// deletes from the map it is ranging over.
func (s *Store) Sweep(ttl time.Duration) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-ttl)
	var expired []string
	for userID, sess := range s.sessions {
		if sess.LastTouched.Before(cutoff) {
			expired = append(expired, userID)
		}
	}
	for _, userID := range expired {
		delete(s.sessions, userID)
	}
	return expired
}

// Run sweeps the store on a fixed interval until ctx is done. It is
// started once from main and owned by the process, never as a package
// side effect.
func (s *Store) Run(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := s.Sweep(ttl); len(evicted) > 0 {
				log.Printf("[session] evicted %d expired session(s): %v", len(evicted), evicted)
			}
		}
	}
}
