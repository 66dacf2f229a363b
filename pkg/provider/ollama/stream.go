package ollama

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/SAMRAT47/genchat/pkg/config"
	"github.com/SAMRAT47/genchat/pkg/llm"
)

// ChatStream sends the conversation with streaming enabled. Ollama streams
// newline-delimited JSON chunks; the final one has done=true.
func (c *Client) ChatStream(ctx context.Context, model string, messages []llm.Message, opts llm.Options) (llm.Stream, error) {
	body, err := c.post(ctx, chatRequest(model, messages, opts, true))
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	return &ChatStream{
		model:   model,
		body:    body,
		scanner: scanner,
	}, nil
}

// ChatStream adapts Ollama's NDJSON feed to provider-neutral chunks.
type ChatStream struct {
	model    string
	body     io.ReadCloser
	scanner  *bufio.Scanner
	finished bool
}

// Recv returns the next chunk, or io.EOF after the final Done chunk.
func (s *ChatStream) Recv() (*llm.StreamChunk, error) {
	if s.finished {
		return nil, io.EOF
	}

	for s.scanner.Scan() {
		line := s.scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var resp chatResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			return nil, fmt.Errorf("parse chunk: %w", err)
		}

		chunk := &llm.StreamChunk{
			Provider:  config.ProviderOllama,
			Model:     resp.Model,
			CreatedAt: resp.CreatedAt,
			Message:   llm.Message{Role: llm.RoleAssistant, Content: resp.Message.Content},
			Done:      resp.Done,
			Usage:     resp.usage(),
		}
		if chunk.CreatedAt.IsZero() {
			chunk.CreatedAt = time.Now().UTC()
		}
		if resp.Done {
			s.finished = true
		}
		return chunk, nil
	}

	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}

	// Stream ended without a done chunk; synthesize one so callers always
	// observe completion.
	s.finished = true
	return &llm.StreamChunk{
		Provider:  config.ProviderOllama,
		Model:     s.model,
		CreatedAt: time.Now().UTC(),
		Message:   llm.Message{Role: llm.RoleAssistant},
		Done:      true,
	}, nil
}

// Close releases the underlying response body.
func (s *ChatStream) Close() error {
	return s.body.Close()
}
