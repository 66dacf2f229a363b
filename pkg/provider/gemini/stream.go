package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/SAMRAT47/genchat/internal/sse"
	"github.com/SAMRAT47/genchat/pkg/config"
	"github.com/SAMRAT47/genchat/pkg/llm"
)

// ChatStream sends the conversation to streamGenerateContent and returns
// the incremental stream. Each SSE event is a partial generateResponse
// whose candidate text extends the reply so far.
func (c *Client) ChatStream(ctx context.Context, model string, messages []llm.Message, opts llm.Options) (llm.Stream, error) {
	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", c.cfg.BaseURL, model)
	body, err := c.post(ctx, url, generateRequest(messages, opts))
	if err != nil {
		return nil, err
	}

	return &ChatStream{
		model:   model,
		body:    body,
		scanner: sse.NewScanner(body),
	}, nil
}

// ChatStream adapts the streamGenerateContent SSE feed to provider-neutral
// chunks.
type ChatStream struct {
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
			s.finished = true
			return &llm.StreamChunk{
				Provider:  config.ProviderGemini,
				Model:     s.model,
				CreatedAt: time.Now().UTC(),
				Message:   llm.Message{Role: llm.RoleAssistant},
				Done:      true,
				Usage:     s.usage,
			}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read stream: %w", err)
		}

		var resp generateResponse
		if err := json.Unmarshal(payload, &resp); err != nil {
			return nil, fmt.Errorf("parse chunk: %w", err)
		}

		// Usage accumulates across events; the last value wins.
		if resp.UsageMetadata != nil {
			s.usage = resp.UsageMetadata.toUsage()
		}
		if len(resp.Candidates) == 0 {
			continue
		}

		text := resp.Candidates[0].text()
		if text == "" {
			continue
		}

		return &llm.StreamChunk{
			Provider:  config.ProviderGemini,
			Model:     s.model,
			CreatedAt: time.Now().UTC(),
			Message:   llm.Message{Role: llm.RoleAssistant, Content: text},
		}, nil
	}
}

// Close releases the underlying response body.
func (s *ChatStream) Close() error {
	return s.body.Close()
}
