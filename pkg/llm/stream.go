package llm

import "time"

// Stream yields incremental response chunks. Recv returns io.EOF after
// the final chunk (the one with Done set) has been delivered. Provider
// clients return their streams behind this interface so the dispatch
// layer stays provider-neutral.
type Stream interface {
	Recv() (*StreamChunk, error)
	Close() error
}

// StreamChunk represents a single chunk in a streaming response.
// Message carries the incremental delta; the final chunk has Done set
// and, when the provider reports it, the turn's token usage.
type StreamChunk struct {
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	Message   Message   `json:"message"`
	Done      bool      `json:"done"`

	Usage *Usage `json:"usage,omitempty"`
}
