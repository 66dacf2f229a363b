package openaicompat

import (
	"time"

	"github.com/SAMRAT47/genchat/pkg/llm"
)

// Chat-completions wire types. Only the fields genchat uses are modeled.

type completionRequest struct {
	Model         string         `json:"model"`
	Messages      []wireMessage  `json:"messages"`
	Temperature   *float64       `json:"temperature,omitempty"`
	MaxTokens     *int           `json:"max_tokens,omitempty"`
	Stream        bool           `json:"stream,omitempty"`
	StreamOptions *streamOptions `json:"stream_options,omitempty"`
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Model   string `json:"model"`
	Created int64  `json:"created"`
	Choices []struct {
		Message      wireMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage *wireUsage `json:"usage"`
}

type streamChunk struct {
	Model   string `json:"model"`
	Created int64  `json:"created"`
	Choices []struct {
		Delta        wireMessage `json:"delta"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage *wireUsage `json:"usage"`
}

type wireUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func chatRequest(model string, messages []llm.Message, opts llm.Options, stream bool) *completionRequest {
	req := &completionRequest{
		Model:       model,
		Messages:    make([]wireMessage, 0, len(messages)),
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Stream:      stream,
	}
	if stream {
		req.StreamOptions = &streamOptions{IncludeUsage: true}
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, wireMessage{Role: m.Role, Content: m.Content})
	}
	return req
}

func (r *completionResponse) toChatResponse(providerID string) *llm.ChatResponse {
	resp := &llm.ChatResponse{
		Provider:  providerID,
		Model:     r.Model,
		CreatedAt: time.Unix(r.Created, 0).UTC(),
		Message:   llm.NewMessage(llm.RoleAssistant, r.Choices[0].Message.Content),
		Done:      true,
	}
	if r.Usage != nil {
		resp.Usage = r.Usage.toUsage()
	}
	return resp
}

func (u *wireUsage) toUsage() *llm.Usage {
	return &llm.Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}
