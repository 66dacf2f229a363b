// Package openaicompat implements the chat-completions contract shared by
// OpenAI and the OpenAI-compatible endpoints (Groq). One client serves
// both providers; only the base URL, key, and model list differ.
package openaicompat

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

const chatCompletionsPath = "/chat/completions"

// Client is an OpenAI-compatible chat-completions client.
type Client struct {
	id         string
	cfg        config.ProviderConfig
	httpClient *http.Client
}

// New creates a client for the given provider id and configuration.
func New(id string, cfg config.ProviderConfig) *Client {
	return &Client{
		id:  id,
		cfg: cfg,
		httpClient: &http.Client{
			// LLM requests can be slow
			Timeout: 5 * time.Minute,
		},
	}
}

func (c *Client) ID() string          { return c.id }
func (c *Client) DisplayName() string { return c.cfg.DisplayName }
func (c *Client) Models() []string    { return c.cfg.Models }

// Available reports whether the API key is configured.
func (c *Client) Available() bool {
	return !c.cfg.RequiresKey() || c.cfg.APIKey != ""
}

// Chat sends the conversation and blocks for the full completion.
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

	var resp completionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s returned no choices", c.cfg.DisplayName)
	}

	return resp.toChatResponse(c.id), nil
}

// post sends the request and returns the response body, translating
// non-200 statuses into errors carrying the upstream message.
func (c *Client) post(ctx context.Context, req *completionRequest) (io.ReadCloser, error) {
	if c.cfg.RequiresKey() && c.cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is not set", c.cfg.DisplayName)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+chatCompletionsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		defer httpResp.Body.Close()
		raw, _ := io.ReadAll(httpResp.Body)

		var apiErr errorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("%s returned %d: %s", c.cfg.DisplayName, httpResp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("%s returned %d: %s", c.cfg.DisplayName, httpResp.StatusCode, string(raw))
	}

	return httpResp.Body, nil
}
