package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/SAMRAT47/genchat/pkg/config"
	"github.com/SAMRAT47/genchat/pkg/provider"
)

// providerInfo is one row of the provider selector: availability decides
// whether the model list is offered at all.
type providerInfo struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Available bool     `json:"available"`
	Models    []string `json:"models,omitempty"`
	Notice    string   `json:"notice,omitempty"`
	Default   bool     `json:"default,omitempty"`
}

// handleListProviders reports each provider's availability and models.
// A provider whose key is missing keeps its model list hidden and carries
// a notice naming the environment variable to set.
func (s *Server) handleListProviders(c *fiber.Ctx) error {
	cfg, registry := s.current()

	providers := make([]providerInfo, 0, 4)
	for _, p := range registry.List() {
		info := providerInfo{
			ID:        p.ID(),
			Name:      p.DisplayName(),
			Available: p.Available(),
			Default:   p.ID() == cfg.Defaults.Provider,
		}
		if info.Available {
			info.Models = p.Models()
		} else {
			info.Notice = missingKeyNotice(cfg, p.ID())
		}
		providers = append(providers, info)
	}

	return c.JSON(map[string]any{
		"providers": providers,
		"defaults": map[string]any{
			"provider":    cfg.Defaults.Provider,
			"temperature": cfg.Defaults.Temperature,
			"max_tokens":  cfg.Defaults.MaxTokens,
		},
	})
}

// missingKeyNotice names the env var the user needs to set.
func missingKeyNotice(cfg config.Config, id string) string {
	if pc, ok := cfg.Providers[id]; ok && pc.KeyEnv != "" {
		return fmt.Sprintf("%s not found in environment variables", pc.KeyEnv)
	}
	return "provider not configured"
}

// resolveErrorMessage turns registry resolution errors into the
// user-facing notice shown inline in the chat.
func resolveErrorMessage(cfg config.Config, providerName string, err error) string {
	if errors.Is(err, provider.ErrNoAPIKey) {
		id := strings.ToLower(strings.TrimSpace(providerName))
		for pid, pc := range cfg.Providers {
			if pid == id || strings.EqualFold(pc.DisplayName, providerName) {
				return missingKeyNotice(cfg, pid)
			}
		}
		return err.Error()
	}
	return err.Error()
}
