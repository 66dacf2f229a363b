package llm

import "time"

// ChatResponse represents a completed chat turn from a provider.
type ChatResponse struct {
	Provider  string    `json:"provider"`   // Provider that served the request
	Model     string    `json:"model"`      // Model that generated the response
	CreatedAt time.Time `json:"created_at"` // Response timestamp
	Message   Message   `json:"message"`    // The assistant's response
	Done      bool      `json:"done"`       // Whether generation is complete

	// Token usage (when the provider reports it)
	Usage *Usage `json:"usage,omitempty"`
}

// Usage reports token consumption for a single turn.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}
