package session

import (
	"context"

	"github.com/SAMRAT47/genchat/pkg/llm"
)

// Store persists sessions and their message sequences. Implementations
// must preserve insertion order and treat stored messages as immutable.
type Store interface {
	// Create starts a new empty session with a fresh id.
	Create(ctx context.Context) (*Session, error)

	// Get returns a session with its full message sequence.
	// Returns ErrNotFound if the session doesn't exist.
	Get(ctx context.Context, id string) (*Session, error)

	// List returns all sessions, most recently updated first, without
	// their messages loaded.
	List(ctx context.Context) ([]*Session, error)

	// Append adds a message to the end of the session's sequence.
	Append(ctx context.Context, id string, msg llm.Message) error

	// Clear removes every message from the session. The session itself
	// survives; its sequence is empty afterwards regardless of prior
	// length.
	Clear(ctx context.Context, id string) error

	// Delete removes the session and its messages.
	Delete(ctx context.Context, id string) error

	// Close closes the store and releases any resources.
	Close() error
}

// ErrNotFound is returned when a session doesn't exist in the store.
type ErrNotFound struct {
	ID string
}

func (e ErrNotFound) Error() string {
	if e.ID == "" {
		return "session not found"
	}
	return "session not found: " + e.ID
}
