package ollama

import (
	"time"

	"github.com/SAMRAT47/genchat/pkg/llm"
)

// Ollama /api/chat wire types.

type wireRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	Stream   *bool         `json:"stream,omitempty"` // Ollama defaults to streaming
	Options  *wireOptions  `json:"options,omitempty"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
}

// chatResponse doubles as the non-streaming response and the NDJSON stream
// chunk; the final chunk has Done set and carries the eval metrics.
type chatResponse struct {
	Model     string      `json:"model"`
	CreatedAt time.Time   `json:"created_at"`
	Message   wireMessage `json:"message"`
	Done      bool        `json:"done"`

	PromptEvalCount int `json:"prompt_eval_count,omitempty"`
	EvalCount       int `json:"eval_count,omitempty"`
}

func chatRequest(model string, messages []llm.Message, opts llm.Options, stream bool) *wireRequest {
	req := &wireRequest{
		Model:    model,
		Messages: make([]wireMessage, 0, len(messages)),
		Stream:   &stream,
	}
	// Max tokens is deliberately not forwarded; the upstream behavior
	// passes Ollama only the sampling temperature.
	if opts.Temperature != nil {
		req.Options = &wireOptions{Temperature: opts.Temperature}
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, wireMessage{Role: m.Role, Content: m.Content})
	}
	return req
}

func (r *chatResponse) toChatResponse() *llm.ChatResponse {
	return &llm.ChatResponse{
		Provider:  "ollama",
		Model:     r.Model,
		CreatedAt: r.CreatedAt,
		Message:   llm.NewMessage(llm.RoleAssistant, r.Message.Content),
		Done:      true,
		Usage:     r.usage(),
	}
}

func (r *chatResponse) usage() *llm.Usage {
	if r.PromptEvalCount == 0 && r.EvalCount == 0 {
		return nil
	}
	return &llm.Usage{
		PromptTokens:     r.PromptEvalCount,
		CompletionTokens: r.EvalCount,
		TotalTokens:      r.PromptEvalCount + r.EvalCount,
	}
}
