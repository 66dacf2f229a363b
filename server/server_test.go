package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SAMRAT47/genchat/pkg/config"
	"github.com/SAMRAT47/genchat/pkg/export"
	"github.com/SAMRAT47/genchat/pkg/llm"
	"github.com/SAMRAT47/genchat/pkg/session"
)

// upstreamStub mimics an OpenAI-compatible chat-completions endpoint,
// answering "echo: <last user message>" either whole or as an SSE stream.
func upstreamStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Stream   bool `json:"stream"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.Unmarshal(body, &req))

		var lastUser string
		for _, m := range req.Messages {
			if m.Role == "user" {
				lastUser = m.Content
			}
		}
		reply := "echo: " + lastUser

		if !req.Stream {
			json.NewEncoder(w).Encode(map[string]any{
				"model": "llama-3.1-8b-instant",
				"choices": []map[string]any{
					{"message": map[string]string{"role": "assistant", "content": reply}, "finish_reason": "stop"},
				},
			})
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		half := len(reply) / 2
		for _, part := range []string{reply[:half], reply[half:]} {
			chunk, _ := json.Marshal(map[string]any{
				"model":   "llama-3.1-8b-instant",
				"choices": []map[string]any{{"delta": map[string]string{"content": part}}},
			})
			io.WriteString(w, "data: "+string(chunk)+"\n\n")
		}
		io.WriteString(w, "data: [DONE]\n\n")
	}))
}

// testServer builds a Server with an in-memory store where only Groq has
// a key, pointed at the upstream stub.
func testServer(t *testing.T, upstreamURL string) *Server {
	t.Helper()

	cfg := config.Default()
	groq := cfg.Providers[config.ProviderGroq]
	groq.APIKey = "gsk-test"
	groq.BaseURL = upstreamURL
	cfg.Providers[config.ProviderGroq] = groq

	openai := cfg.Providers[config.ProviderOpenAI]
	openai.APIKey = ""
	cfg.Providers[config.ProviderOpenAI] = openai

	s, err := New(cfg, zap.NewNop(), false)
	require.NoError(t, err)
	t.Cleanup(func() { s.store.Close() })
	return s
}

func postJSON(t *testing.T, s *Server, path string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	s := testServer(t, "http://unused")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	result := decodeJSON[map[string]string](t, resp)
	assert.Equal(t, "ok", result["status"])
}

func TestListProvidersHidesModelsWithoutKey(t *testing.T) {
	s := testServer(t, "http://unused")

	req := httptest.NewRequest(http.MethodGet, "/api/providers", nil)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	result := decodeJSON[struct {
		Providers []providerInfo `json:"providers"`
	}](t, resp)
	require.Len(t, result.Providers, 4)

	byID := map[string]providerInfo{}
	for _, p := range result.Providers {
		byID[p.ID] = p
	}

	assert.True(t, byID["groq"].Available)
	assert.NotEmpty(t, byID["groq"].Models)
	assert.True(t, byID["groq"].Default)

	assert.False(t, byID["openai"].Available)
	assert.Empty(t, byID["openai"].Models, "missing key hides the model list")
	assert.Contains(t, byID["openai"].Notice, "OPENAI_API_KEY")

	assert.True(t, byID["ollama"].Available, "local provider needs no key")
}

func TestChatNonStreaming(t *testing.T) {
	upstream := upstreamStub(t)
	defer upstream.Close()
	s := testServer(t, upstream.URL)

	created := decodeJSON[session.Session](t, postJSON(t, s, "/api/sessions", nil))

	stream := false
	resp := postJSON(t, s, "/api/chat", llm.ChatRequest{
		SessionID: created.ID,
		Provider:  "groq",
		Message:   "hello",
		Stream:    &stream,
	})
	require.Equal(t, 200, resp.StatusCode)

	chat := decodeJSON[llm.ChatResponse](t, resp)
	assert.Equal(t, "echo: hello", chat.Message.Content)
	assert.True(t, chat.Done)

	// Both turns landed in the session, in order.
	got, err := s.store.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, llm.RoleUser, got.Messages[0].Role)
	assert.Equal(t, "hello", got.Messages[0].Content)
	assert.Equal(t, llm.RoleAssistant, got.Messages[1].Role)
	assert.Equal(t, "echo: hello", got.Messages[1].Content)
}

func TestChatStreaming(t *testing.T) {
	upstream := upstreamStub(t)
	defer upstream.Close()
	s := testServer(t, upstream.URL)

	created := decodeJSON[session.Session](t, postJSON(t, s, "/api/sessions", nil))

	resp := postJSON(t, s, "/api/chat", llm.ChatRequest{
		SessionID: created.ID,
		Provider:  "Groq",
		Message:   "stream me",
	})
	require.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/x-ndjson")

	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var content string
	var sawDone bool
	for _, line := range strings.Split(strings.TrimSpace(string(raw)), "\n") {
		var chunk llm.StreamChunk
		require.NoError(t, json.Unmarshal([]byte(line), &chunk), "line %q", line)
		content += chunk.Message.Content
		if chunk.Done {
			sawDone = true
		}
	}
	assert.Equal(t, "echo: stream me", content)
	assert.True(t, sawDone, "stream terminates with a done chunk")
}

func TestChatValidation(t *testing.T) {
	s := testServer(t, "http://unused")

	// Empty message
	resp := postJSON(t, s, "/api/chat", llm.ChatRequest{Provider: "groq", Message: "   "})
	assert.Equal(t, 400, resp.StatusCode)

	// Unknown provider
	resp = postJSON(t, s, "/api/chat", llm.ChatRequest{Provider: "skynet", Message: "hi"})
	assert.Equal(t, 400, resp.StatusCode)

	// Unknown model
	resp = postJSON(t, s, "/api/chat", llm.ChatRequest{Provider: "groq", Model: "gpt-4o", Message: "hi"})
	assert.Equal(t, 400, resp.StatusCode)

	// Out-of-range options
	resp = postJSON(t, s, "/api/chat", llm.ChatRequest{
		Provider: "groq",
		Message:  "hi",
		Options:  &llm.Options{Temperature: llm.Float64(3.0)},
	})
	assert.Equal(t, 400, resp.StatusCode)

	// Unknown session
	resp = postJSON(t, s, "/api/chat", llm.ChatRequest{SessionID: "nope", Provider: "groq", Message: "hi"})
	assert.Equal(t, 404, resp.StatusCode)
}

func TestChatMissingKeyNotice(t *testing.T) {
	s := testServer(t, "http://unused")

	resp := postJSON(t, s, "/api/chat", llm.ChatRequest{Provider: "openai", Message: "hi"})
	require.Equal(t, 400, resp.StatusCode)

	result := decodeJSON[llm.ErrorResponse](t, resp)
	assert.Contains(t, result.Error, "OPENAI_API_KEY")
}

func TestChatUpstreamFailureLeavesSessionIntact(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":{"message":"upstream exploded"}}`)
	}))
	defer upstream.Close()
	s := testServer(t, upstream.URL)

	created := decodeJSON[session.Session](t, postJSON(t, s, "/api/sessions", nil))

	stream := false
	resp := postJSON(t, s, "/api/chat", llm.ChatRequest{
		SessionID: created.ID,
		Provider:  "groq",
		Message:   "boom",
		Stream:    &stream,
	})
	assert.Equal(t, 502, resp.StatusCode)

	result := decodeJSON[llm.ErrorResponse](t, resp)
	assert.Contains(t, result.Error, "upstream exploded")

	// The user message stays; no assistant message was appended.
	got, err := s.store.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, llm.RoleUser, got.Messages[0].Role)
}

func TestSessionClear(t *testing.T) {
	upstream := upstreamStub(t)
	defer upstream.Close()
	s := testServer(t, upstream.URL)

	created := decodeJSON[session.Session](t, postJSON(t, s, "/api/sessions", nil))

	stream := false
	for _, msg := range []string{"one", "two", "three"} {
		resp := postJSON(t, s, "/api/chat", llm.ChatRequest{
			SessionID: created.ID, Provider: "groq", Message: msg, Stream: &stream,
		})
		require.Equal(t, 200, resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/sessions/"+created.ID+"/messages", nil)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)

	got, err := s.store.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Messages, "clear always yields an empty sequence")
}

func TestSessionExportRoundTrip(t *testing.T) {
	upstream := upstreamStub(t)
	defer upstream.Close()
	s := testServer(t, upstream.URL)

	created := decodeJSON[session.Session](t, postJSON(t, s, "/api/sessions", nil))

	stream := false
	for _, msg := range []string{"first", "second"} {
		resp := postJSON(t, s, "/api/chat", llm.ChatRequest{
			SessionID: created.ID, Provider: "groq", Message: msg, Stream: &stream,
		})
		require.Equal(t, 200, resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+created.ID+"/export?format=text", nil)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".txt")

	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	parsed, err := export.ParseTranscript(raw)
	require.NoError(t, err)

	got, err := s.store.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, parsed, len(got.Messages), "transcript count matches the in-memory sequence")
	for i, msg := range got.Messages {
		assert.Equal(t, msg.Role, parsed[i].Role)
		assert.Equal(t, msg.Content, parsed[i].Content)
	}
}

func TestSessionExportUnknownFormat(t *testing.T) {
	s := testServer(t, "http://unused")
	created := decodeJSON[session.Session](t, postJSON(t, s, "/api/sessions", nil))

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+created.ID+"/export?format=pdf", nil)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestSessionNotFound(t *testing.T) {
	s := testServer(t, "http://unused")

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/sessions/nope", nil),
		httptest.NewRequest(http.MethodDelete, "/api/sessions/nope", nil),
		httptest.NewRequest(http.MethodDelete, "/api/sessions/nope/messages", nil),
		httptest.NewRequest(http.MethodGet, "/api/sessions/nope/export", nil),
	} {
		resp, err := s.app.Test(req)
		require.NoError(t, err)
		require.Equal(t, 404, resp.StatusCode, "%s %s", req.Method, req.URL.Path)
		if req.Method == http.MethodGet {
			result := decodeJSON[llm.ErrorResponse](t, resp)
			assert.Contains(t, result.Error, "nope")
		}
	}
}

func TestReloadEnablesProvider(t *testing.T) {
	s := testServer(t, "http://unused")

	p, _ := s.registry.Get("openai")
	require.False(t, p.Available())

	cfg, _ := s.current()
	openai := cfg.Providers[config.ProviderOpenAI]
	openai.APIKey = "sk-now-set"
	cfg.Providers[config.ProviderOpenAI] = openai
	s.Reload(cfg)

	p, err := s.registry.Get("openai")
	require.NoError(t, err)
	assert.True(t, p.Available(), "reload picks up newly configured keys")
}
