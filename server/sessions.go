package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/SAMRAT47/genchat/pkg/export"
	"github.com/SAMRAT47/genchat/pkg/llm"
	"github.com/SAMRAT47/genchat/pkg/session"
)

// sessionResponse is a session plus its sidebar counters.
type sessionResponse struct {
	*session.Session
	Stats session.Stats `json:"stats"`
}

// handleCreateSession starts a new empty session.
func (s *Server) handleCreateSession(c *fiber.Ctx) error {
	sess, err := s.store.Create(c.Context())
	if err != nil {
		s.logger.Error("failed to create session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to create session"})
	}

	s.logger.Info("session created", zap.String("session_id", sess.ID))
	return c.Status(fiber.StatusCreated).JSON(sessionResponse{Session: sess, Stats: sess.Stats()})
}

// handleListSessions returns all sessions, most recently updated first.
func (s *Server) handleListSessions(c *fiber.Ctx) error {
	sessions, err := s.store.List(c.Context())
	if err != nil {
		s.logger.Error("failed to list sessions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to list sessions"})
	}

	return c.JSON(map[string]any{
		"count":    len(sessions),
		"sessions": sessions,
	})
}

// handleGetSession returns a session's ordered messages and counters.
func (s *Server) handleGetSession(c *fiber.Ctx) error {
	sess, err := s.loadSession(c)
	if err != nil {
		return s.sessionError(c, err)
	}
	return c.JSON(sessionResponse{Session: sess, Stats: sess.Stats()})
}

// handleDeleteSession removes a session entirely.
func (s *Server) handleDeleteSession(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.store.Delete(c.Context(), id); err != nil {
		return s.sessionError(c, err)
	}

	s.logger.Info("session deleted", zap.String("session_id", id))
	return c.SendStatus(fiber.StatusNoContent)
}

// handleClearSession empties the session's message sequence; the session
// itself survives.
func (s *Server) handleClearSession(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.store.Clear(c.Context(), id); err != nil {
		return s.sessionError(c, err)
	}

	s.logger.Info("session cleared", zap.String("session_id", id))
	return c.SendStatus(fiber.StatusNoContent)
}

// handleExportSession renders the transcript in the requested format as a
// file download.
func (s *Server) handleExportSession(c *fiber.Ctx) error {
	exporter, err := export.New(c.Query("format"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: err.Error()})
	}

	sess, err := s.loadSession(c)
	if err != nil {
		return s.sessionError(c, err)
	}

	content, err := exporter.Export(sess)
	if err != nil {
		s.logger.Error("export failed", zap.String("session_id", sess.ID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "export failed"})
	}

	filename := export.Filename(exporter, time.Now())
	c.Set(fiber.HeaderContentType, exporter.MimeType())
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(content)
}

// loadSession fetches the session named in the route. The caller maps
// any error onto an HTTP status via sessionError.
func (s *Server) loadSession(c *fiber.Ctx) (*session.Session, error) {
	return s.store.Get(c.Context(), c.Params("id"))
}

// sessionError maps store errors onto HTTP statuses.
func (s *Server) sessionError(c *fiber.Ctx, err error) error {
	var notFound session.ErrNotFound
	if errors.As(err, &notFound) {
		return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: err.Error()})
	}
	s.logger.Error("session store error", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "internal error"})
}
