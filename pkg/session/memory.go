package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SAMRAT47/genchat/pkg/llm"
)

// MemoryStore keeps sessions in memory for the lifetime of the process,
// matching the UI-session-only lifetime of the original. Safe for
// concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Create starts a new empty session.
func (s *MemoryStore) Create(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[sess.ID] = sess
	return copySession(sess, true), nil
}

// Get returns a session with its messages.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound{ID: id}
	}
	return copySession(sess, true), nil
}

// List returns all sessions, most recently updated first.
func (s *MemoryStore) List(ctx context.Context) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, copySession(sess, false))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// Append adds a message to the end of the session's sequence.
func (s *MemoryStore) Append(ctx context.Context, id string, msg llm.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound{ID: id}
	}
	sess.Messages = append(sess.Messages, msg)
	sess.UpdatedAt = time.Now().UTC()
	return nil
}

// Clear empties the session's message sequence.
func (s *MemoryStore) Clear(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound{ID: id}
	}
	sess.Messages = nil
	sess.UpdatedAt = time.Now().UTC()
	return nil
}

// Delete removes the session entirely.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound{ID: id}
	}
	delete(s.sessions, id)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

// copySession returns a defensive copy so callers can't mutate stored
// state behind the lock.
func copySession(sess *Session, withMessages bool) *Session {
	out := &Session{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
	}
	if withMessages && len(sess.Messages) > 0 {
		out.Messages = make([]llm.Message, len(sess.Messages))
		copy(out.Messages, sess.Messages)
	}
	return out
}
