package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAMRAT47/genchat/pkg/config"
	"github.com/SAMRAT47/genchat/pkg/llm"
)

func testConfig(baseURL string) config.ProviderConfig {
	return config.ProviderConfig{
		DisplayName: "Google Gemini",
		BaseURL:     baseURL,
		Models:      []string{"gemini-2.5-flash"},
		KeyEnv:      "GOOGLE_API_KEY",
		APIKey:      "ai-test",
	}
}

func TestChat(t *testing.T) {
	var gotReq contentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "ai-test", r.Header.Get("x-goog-api-key"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotReq))

		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{
					"content":      map[string]any{"role": "model", "parts": []map[string]string{{"text": "Hi "}, {"text": "there"}}},
					"finishReason": "STOP",
				},
			},
			"usageMetadata": map[string]int{"promptTokenCount": 9, "candidatesTokenCount": 2, "totalTokenCount": 11},
		})
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	messages := []llm.Message{
		llm.NewMessage(llm.RoleSystem, llm.SystemPrompt),
		llm.NewMessage(llm.RoleUser, "hello"),
		llm.NewMessage(llm.RoleAssistant, "earlier reply"),
		llm.NewMessage(llm.RoleUser, "again"),
	}

	resp, err := c.Chat(context.Background(), "gemini-2.5-flash", messages, llm.Options{Temperature: llm.Float64(0.5)})
	require.NoError(t, err)

	assert.Equal(t, "Hi there", resp.Message.Content, "multi-part candidates concatenate")
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 11, resp.Usage.TotalTokens)

	// System messages become systemInstruction, assistant turns become "model".
	require.NotNil(t, gotReq.SystemInstruction)
	assert.Equal(t, llm.SystemPrompt, gotReq.SystemInstruction.Parts[0].Text)
	require.Len(t, gotReq.Contents, 3)
	assert.Equal(t, "user", gotReq.Contents[0].Role)
	assert.Equal(t, "model", gotReq.Contents[1].Role)
	require.NotNil(t, gotReq.GenerationConfig)
	assert.Equal(t, 0.5, *gotReq.GenerationConfig.Temperature)
}

func TestChatMissingKey(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.APIKey = ""

	c := New(cfg)
	assert.False(t, c.Available())

	_, err := c.Chat(context.Background(), "gemini-2.5-flash", nil, llm.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestChatUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"},
		})
	}))
	defer srv.Close()

	_, err := New(testConfig(srv.URL)).Chat(context.Background(), "gemini-2.5-flash", nil, llm.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not valid")
}

func TestChatStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.5-flash:streamGenerateContent", r.URL.Path)
		assert.Equal(t, "sse", r.URL.Query().Get("alt"))

		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, `data: {"candidates":[{"content":{"parts":[{"text":"Hel"}],"role":"model"}}]}`+"\n\n")
		io.WriteString(w, `data: {"candidates":[{"content":{"parts":[{"text":"lo"}],"role":"model"},"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":4,"candidatesTokenCount":2,"totalTokenCount":6}}`+"\n\n")
	}))
	defer srv.Close()

	stream, err := New(testConfig(srv.URL)).ChatStream(context.Background(), "gemini-2.5-flash",
		[]llm.Message{llm.NewMessage(llm.RoleUser, "hi")}, llm.Options{})
	require.NoError(t, err)
	defer stream.Close()

	var content string
	var final *llm.StreamChunk
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		content += chunk.Message.Content
		if chunk.Done {
			final = chunk
		}
	}

	assert.Equal(t, "Hello", content)
	require.NotNil(t, final)
	require.NotNil(t, final.Usage)
	assert.Equal(t, 6, final.Usage.TotalTokens)
}
