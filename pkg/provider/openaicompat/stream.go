package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/SAMRAT47/genchat/internal/sse"
	"github.com/SAMRAT47/genchat/pkg/llm"
)

// doneSentinel terminates an OpenAI-compatible SSE stream.
var doneSentinel = []byte("[DONE]")

// ChatStream sends the conversation with stream enabled and returns the
// incremental delta stream.
func (c *Client) ChatStream(ctx context.Context, model string, messages []llm.Message, opts llm.Options) (llm.Stream, error) {
	body, err := c.post(ctx, chatRequest(model, messages, opts, true))
	if err != nil {
		return nil, err
	}

	return &ChatStream{
		provider: c.id,
		model:    model,
		body:     body,
		scanner:  sse.NewScanner(body),
	}, nil
}

// ChatStream reads SSE events off the response body and converts them to
// provider-neutral chunks. The final chunk has Done set and carries the
// turn's token usage when the endpoint reported it.
type ChatStream struct {
	provider string
	model    string
	body     io.ReadCloser
	scanner  *sse.Scanner
	usage    *llm.Usage
	finished bool
}

// Recv returns the next chunk, or io.EOF after the final Done chunk.
func (s *ChatStream) Recv() (*llm.StreamChunk, error) {
	if s.finished {
		return nil, io.EOF
	}

	for {
		payload, err := s.scanner.Next()
		if err == io.EOF {
			return s.finish()
		}
		if err != nil {
			return nil, fmt.Errorf("read stream: %w", err)
		}

		if bytes.Equal(bytes.TrimSpace(payload), doneSentinel) {
			return s.finish()
		}

		var chunk streamChunk
		if err := json.Unmarshal(payload, &chunk); err != nil {
			return nil, fmt.Errorf("parse chunk: %w", err)
		}

		// Usage arrives in a trailing chunk with no choices.
		if chunk.Usage != nil {
			s.usage = chunk.Usage.toUsage()
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}

		return &llm.StreamChunk{
			Provider:  s.provider,
			Model:     s.model,
			CreatedAt: time.Now().UTC(),
			Message:   llm.Message{Role: llm.RoleAssistant, Content: delta},
		}, nil
	}
}

func (s *ChatStream) finish() (*llm.StreamChunk, error) {
	s.finished = true
	return &llm.StreamChunk{
		Provider:  s.provider,
		Model:     s.model,
		CreatedAt: time.Now().UTC(),
		Message:   llm.Message{Role: llm.RoleAssistant},
		Done:      true,
		Usage:     s.usage,
	}, nil
}

// Close releases the underlying response body.
func (s *ChatStream) Close() error {
	return s.body.Close()
}
