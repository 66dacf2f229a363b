// Package gemini implements the Google Gemini client over the
// generativelanguage REST API.
package gemini

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

// Client talks to the generateContent / streamGenerateContent endpoints.
type Client struct {
	cfg        config.ProviderConfig
	httpClient *http.Client
}

// New creates a Gemini client from configuration.
func New(cfg config.ProviderConfig) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			// LLM requests can be slow
			Timeout: 5 * time.Minute,
		},
	}
}

func (c *Client) ID() string          { return config.ProviderGemini }
func (c *Client) DisplayName() string { return c.cfg.DisplayName }
func (c *Client) Models() []string    { return c.cfg.Models }

// Available reports whether GOOGLE_API_KEY (or the configured key env) is set.
func (c *Client) Available() bool {
	return !c.cfg.RequiresKey() || c.cfg.APIKey != ""
}

// Chat sends the conversation and blocks for the full response.
func (c *Client) Chat(ctx context.Context, model string, messages []llm.Message, opts llm.Options) (*llm.ChatResponse, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent", c.cfg.BaseURL, model)
	body, err := c.post(ctx, url, generateRequest(messages, opts))
	if err != nil {
		return nil, err
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp generateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%s returned no candidates", c.cfg.DisplayName)
	}

	return &llm.ChatResponse{
		Provider:  config.ProviderGemini,
		Model:     model,
		CreatedAt: time.Now().UTC(),
		Message:   llm.NewMessage(llm.RoleAssistant, resp.Candidates[0].text()),
		Done:      true,
		Usage:     resp.UsageMetadata.toUsage(),
	}, nil
}

func (c *Client) post(ctx context.Context, url string, req *contentRequest) (io.ReadCloser, error) {
	if c.cfg.RequiresKey() && c.cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is not set", c.cfg.DisplayName)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.cfg.APIKey)

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
