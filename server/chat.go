package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/SAMRAT47/genchat/pkg/llm"
	"github.com/SAMRAT47/genchat/pkg/provider"
	"github.com/SAMRAT47/genchat/pkg/session"
)

// handleChat runs one user turn: append the user message to the session,
// dispatch the conversation to the selected provider, and append the
// assistant's reply. A provider failure is surfaced to the caller and the
// user message stays in the session, so the user can simply resend.
func (s *Server) handleChat(c *fiber.Ctx) error {
	startTime := time.Now()

	var req llm.ChatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		s.logger.Error("failed to parse chat request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "message must not be empty"})
	}

	cfg, registry := s.current()

	if req.Provider == "" {
		req.Provider = cfg.Defaults.Provider
	}

	opts := llm.Options{
		Temperature: llm.Float64(cfg.Defaults.Temperature),
		MaxTokens:   llm.Int(cfg.Defaults.MaxTokens),
	}
	if req.Options != nil {
		if err := req.Options.Validate(); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: err.Error()})
		}
		if req.Options.Temperature != nil {
			opts.Temperature = req.Options.Temperature
		}
		if req.Options.MaxTokens != nil {
			opts.MaxTokens = req.Options.MaxTokens
		}
	}

	p, model, err := registry.Resolve(req.Provider, req.Model)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: resolveErrorMessage(cfg, req.Provider, err)})
	}

	s.logger.Debug("received chat request",
		zap.String("provider", p.ID()),
		zap.String("model", model),
		zap.String("session_id", req.SessionID),
		zap.Bool("stream", req.Streaming()),
	)

	// Build the conversation history and record the user's turn.
	var history []llm.Message
	if req.SessionID != "" {
		sess, err := s.store.Get(c.Context(), req.SessionID)
		if err != nil {
			var notFound session.ErrNotFound
			if errors.As(err, &notFound) {
				return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: err.Error()})
			}
			s.logger.Error("failed to load session", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "internal error"})
		}
		history = sess.Messages
	}

	userMsg := llm.NewMessage(llm.RoleUser, req.Message)
	history = append(history, userMsg)

	if req.SessionID != "" {
		if err := s.store.Append(c.Context(), req.SessionID, userMsg); err != nil {
			s.logger.Error("failed to store user message", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "internal error"})
		}
	}

	conversation := provider.Conversation(history)

	if req.Streaming() {
		return s.streamChat(c, p, model, conversation, opts, req.SessionID, startTime)
	}
	return s.blockingChat(c, p, model, conversation, opts, req.SessionID, startTime)
}

// blockingChat handles non-streaming chat requests.
func (s *Server) blockingChat(c *fiber.Ctx, p provider.Provider, model string, conversation []llm.Message, opts llm.Options, sessionID string, startTime time.Time) error {
	resp, err := p.Chat(c.Context(), model, conversation, opts)
	if err != nil {
		s.logger.Error("provider call failed",
			zap.String("provider", p.ID()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{Error: err.Error()})
	}

	s.logger.Debug("received provider response",
		zap.String("provider", p.ID()),
		zap.String("model", resp.Model),
		zap.String("content_preview", truncate(resp.Message.Content, 100)),
		zap.Duration("duration", time.Since(startTime)),
	)

	s.recordAssistantMessage(c.Context(), sessionID, resp.Message)

	return c.JSON(resp)
}

// streamChat handles streaming chat requests, relaying provider chunks to
// the client as NDJSON lines.
func (s *Server) streamChat(c *fiber.Ctx, p provider.Provider, model string, conversation []llm.Message, opts llm.Options, sessionID string, startTime time.Time) error {
	stream, err := p.ChatStream(c.Context(), model, conversation, opts)
	if err != nil {
		s.logger.Error("provider stream failed",
			zap.String("provider", p.ID()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{Error: err.Error()})
	}

	c.Set("Content-Type", "application/x-ndjson")
	c.Set("Transfer-Encoding", "chunked")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer stream.Close()

		var fullContent strings.Builder

		for {
			chunk, err := stream.Recv()
			if err == io.EOF {
				break
			}
			if err != nil {
				s.logger.Error("error reading provider stream", zap.Error(err))
				writeLine(w, llm.ErrorResponse{Error: err.Error()})
				return
			}

			fullContent.WriteString(chunk.Message.Content)
			writeLine(w, chunk)

			if chunk.Done {
				break
			}
		}

		s.logger.Debug("streaming complete",
			zap.String("provider", p.ID()),
			zap.Int("content_length", fullContent.Len()),
			zap.Duration("duration", time.Since(startTime)),
		)

		// The request context dies with the stream writer; store with a
		// fresh one.
		s.recordAssistantMessage(context.Background(), sessionID, llm.NewMessage(llm.RoleAssistant, fullContent.String()))
	}))

	return nil
}

// recordAssistantMessage appends the assistant's reply to the session, if
// the turn belongs to one. Storage failure doesn't fail the request; the
// reply was already delivered.
func (s *Server) recordAssistantMessage(ctx context.Context, sessionID string, msg llm.Message) {
	if sessionID == "" {
		return
	}
	if err := s.store.Append(ctx, sessionID, msg); err != nil {
		s.logger.Error("failed to store assistant message",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return
	}
	s.logger.Debug("assistant message stored", zap.String("session_id", sessionID))
}

func writeLine(w *bufio.Writer, v any) {
	line, err := json.Marshal(v)
	if err != nil {
		return
	}
	w.Write(line)
	w.Write([]byte("\n"))
	w.Flush()
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
