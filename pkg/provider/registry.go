package provider

import (
	"strings"

	"github.com/SAMRAT47/genchat/pkg/config"
	"github.com/SAMRAT47/genchat/pkg/llm"
	"github.com/SAMRAT47/genchat/pkg/provider/gemini"
	"github.com/SAMRAT47/genchat/pkg/provider/ollama"
	"github.com/SAMRAT47/genchat/pkg/provider/openaicompat"
)

// Registry is an ordered lookup table from provider name to client.
// It accepts both identifiers ("groq") and display names ("Google
// Gemini"), case-insensitively, since both appear in the UI surface.
type Registry struct {
	order     []string
	providers map[string]Provider
}

// NewRegistry builds the registry from configuration. OpenAI and Groq
// share the OpenAI-compatible chat-completions client; Gemini and Ollama
// speak their own wire contracts.
func NewRegistry(cfg config.Config) *Registry {
	r := &Registry{providers: make(map[string]Provider)}

	for _, id := range config.ProviderOrder {
		pc, ok := cfg.Providers[id]
		if !ok {
			continue
		}

		var p Provider
		switch id {
		case config.ProviderGemini:
			p = gemini.New(pc)
		case config.ProviderOllama:
			p = ollama.New(pc)
		default:
			p = openaicompat.New(id, pc)
		}

		r.register(p)
	}

	return r
}

func (r *Registry) register(p Provider) {
	r.order = append(r.order, p.ID())
	r.providers[p.ID()] = p
	r.providers[strings.ToLower(p.DisplayName())] = p
}

// Get returns the provider for the given id or display name.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, UnknownProviderError{Name: name}
	}
	return p, nil
}

// List returns all providers in canonical display order.
func (r *Registry) List() []Provider {
	out := make([]Provider, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.providers[id])
	}
	return out
}

// Resolve looks up the provider, checks its availability, and settles the
// model: an empty model selects the provider's first listed model, any
// other value must appear in the provider's model list.
func (r *Registry) Resolve(name, model string) (Provider, string, error) {
	p, err := r.Get(name)
	if err != nil {
		return nil, "", err
	}

	if !p.Available() {
		return nil, "", ErrNoAPIKey
	}

	models := p.Models()
	if model == "" {
		return p, models[0], nil
	}

	for _, m := range models {
		if m == model {
			return p, model, nil
		}
	}

	return nil, "", UnknownModelError{Provider: p.DisplayName(), Model: model}
}

// Conversation prepends the standing system prompt to the session history,
// producing the message sequence actually sent upstream.
func Conversation(history []llm.Message) []llm.Message {
	out := make([]llm.Message, 0, len(history)+1)
	out = append(out, llm.Message{Role: llm.RoleSystem, Content: llm.SystemPrompt})
	return append(out, history...)
}
