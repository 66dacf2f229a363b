package llm

// ChatRequest represents one user turn submitted to the chat endpoint.
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"` // Session to append to (empty: one-off turn)
	Provider  string `json:"provider"`             // Provider name (e.g., "Groq")
	Model     string `json:"model,omitempty"`      // Model name (empty: provider default)
	Message   string `json:"message"`              // The user's message text
	Stream    *bool  `json:"stream,omitempty"`     // Whether to stream the response (default: true)

	// Generation options
	Options *Options `json:"options,omitempty"`
}

// Streaming reports whether the request asked for a streamed response.
// Streaming is the default, matching the incremental chat display.
func (r *ChatRequest) Streaming() bool {
	return r.Stream == nil || *r.Stream
}
