// Package session holds the ordered message sequence for each chat
// session. A session is append-only: messages are never mutated after
// creation, and clearing wholesale is the only removal.
package session

import (
	"time"

	"github.com/SAMRAT47/genchat/pkg/llm"
)

// Session is one conversation: an identifier and its messages in
// insertion order.
type Session struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Messages  []llm.Message `json:"messages"`
}

// Stats are the sidebar counters: user, assistant, and total message
// counts.
type Stats struct {
	UserMessages      int `json:"user_messages"`
	AssistantMessages int `json:"assistant_messages"`
	TotalMessages     int `json:"total_messages"`
}

// Stats computes the message counters for the session.
func (s *Session) Stats() Stats {
	st := Stats{TotalMessages: len(s.Messages)}
	for _, m := range s.Messages {
		switch m.Role {
		case llm.RoleUser:
			st.UserMessages++
		case llm.RoleAssistant:
			st.AssistantMessages++
		}
	}
	return st
}
