// Package ollama implements the client for a local Ollama endpoint via its
// /api/chat contract. Ollama needs no API key and, following the upstream
// behavior, does not receive a max-token cap.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/SAMRAT47/genchat/pkg/config"
	"github.com/SAMRAT47/genchat/pkg/llm"
)

const chatPath = "/api/chat"

// Client talks to a local Ollama server.
type Client struct {
	cfg        config.ProviderConfig
	httpClient *http.Client
}

// New creates an Ollama client from configuration.
func New(cfg config.ProviderConfig) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			// Local generation can still take minutes on big models
			Timeout: 5 * time.Minute,
		},
	}
}

func (c *Client) ID() string          { return config.ProviderOllama }
func (c *Client) DisplayName() string { return c.cfg.DisplayName }
func (c *Client) Models() []string    { return c.cfg.Models }

// Available is always true: a local endpoint needs no key. Whether the
// server is actually running surfaces as a call error, like any other
// provider failure.
func (c *Client) Available() bool { return true }

// Chat sends the conversation with streaming disabled and blocks for the
// full response.
func (c *Client) Chat(ctx context.Context, model string, messages []llm.Message, opts llm.Options) (*llm.ChatResponse, error) {
	body, err := c.post(ctx, chatRequest(model, messages, opts, false))
	if err != nil {
		return nil, err
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return resp.toChatResponse(), nil
}

func (c *Client) post(ctx context.Context, req *wireRequest) (io.ReadCloser, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+chatPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("is Ollama running at %s? %w", c.cfg.BaseURL, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		defer httpResp.Body.Close()
		raw, _ := io.ReadAll(httpResp.Body)

		var apiErr llm.ErrorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("%s returned %d: %s", c.cfg.DisplayName, httpResp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("%s returned %d: %s", c.cfg.DisplayName, httpResp.StatusCode, string(raw))
	}

	return httpResp.Body, nil
}
