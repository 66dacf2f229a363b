package gemini

import (
	"strings"

	"github.com/SAMRAT47/genchat/pkg/llm"
)

// generativelanguage wire types. Gemini keeps the system prompt out of the
// turn list ("systemInstruction") and calls the assistant role "model".

type contentRequest struct {
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Contents          []content         `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
}

type generateResponse struct {
	Candidates    []candidate    `json:"candidates"`
	UsageMetadata *usageMetadata `json:"usageMetadata"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

func (c candidate) text() string {
	var sb strings.Builder
	for _, p := range c.Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func generateRequest(messages []llm.Message, opts llm.Options) *contentRequest {
	req := &contentRequest{}

	if opts.Temperature != nil || opts.MaxTokens != nil {
		req.GenerationConfig = &generationConfig{
			Temperature:     opts.Temperature,
			MaxOutputTokens: opts.MaxTokens,
		}
	}

	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			req.SystemInstruction = &content{Parts: []part{{Text: m.Content}}}
		case llm.RoleAssistant:
			req.Contents = append(req.Contents, content{Role: "model", Parts: []part{{Text: m.Content}}})
		default:
			req.Contents = append(req.Contents, content{Role: "user", Parts: []part{{Text: m.Content}}})
		}
	}

	return req
}

func (u *usageMetadata) toUsage() *llm.Usage {
	if u == nil {
		return nil
	}
	return &llm.Usage{
		PromptTokens:     u.PromptTokenCount,
		CompletionTokens: u.CandidatesTokenCount,
		TotalTokens:      u.TotalTokenCount,
	}
}
