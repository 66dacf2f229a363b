// Package llm provides the provider-neutral representations of chat
// messages, requests, and responses that flow between the server, the
// provider clients, and the terminal client.
package llm

import "time"

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// SystemPrompt is prepended to every conversation sent upstream.
const SystemPrompt = "You are a helpful, friendly, and knowledgeable AI assistant. Provide clear, accurate, and engaging responses."

// Message represents a single message in a conversation.
// Messages are immutable once created; a session is an append-only
// sequence of them in insertion order.
type Message struct {
	Role      string    `json:"role"`                // "system", "user", "assistant"
	Content   string    `json:"content"`             // The message content
	CreatedAt time.Time `json:"created_at,omitzero"` // When the message was created
}

// NewMessage creates a message stamped with the current time.
func NewMessage(role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}
