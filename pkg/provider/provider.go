// Package provider defines the interface every LLM provider client
// implements and the registry that dispatches a selected provider name to
// the matching client.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAMRAT47/genchat/pkg/llm"
)

// Provider is a single LLM inference backend (hosted or local). Chat and
// ChatStream send one conversation and return the assistant's reply; each
// provider delegates streaming to its own existing wire contract.
type Provider interface {
	// ID is the stable lowercase identifier (e.g., "groq").
	ID() string

	// DisplayName is the human-facing name (e.g., "Google Gemini").
	DisplayName() string

	// Models lists the selectable model identifiers.
	Models() []string

	// Available reports whether the provider can be used: its API key is
	// configured, or it needs none.
	Available() bool

	// Chat sends the conversation and blocks for the full response.
	Chat(ctx context.Context, model string, messages []llm.Message, opts llm.Options) (*llm.ChatResponse, error)

	// ChatStream sends the conversation and returns the incremental
	// response stream. The caller must drain or close the stream.
	ChatStream(ctx context.Context, model string, messages []llm.Message, opts llm.Options) (Stream, error)
}

// Stream is the incremental response stream returned by ChatStream. It
// lives in pkg/llm so the concrete clients can name it without importing
// this package.
type Stream = llm.Stream

// ErrNoAPIKey is returned when a provider is selected but its key
// environment variable is empty.
var ErrNoAPIKey = errors.New("API key not configured")

// UnknownProviderError is returned for a provider name the registry does
// not know.
type UnknownProviderError struct {
	Name string
}

func (e UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider %q", e.Name)
}

// UnknownModelError is returned when the requested model is not in the
// provider's model list.
type UnknownModelError struct {
	Provider string
	Model    string
}

func (e UnknownModelError) Error() string {
	return fmt.Sprintf("provider %s has no model %q", e.Provider, e.Model)
}
