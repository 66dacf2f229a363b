package export

import (
	"fmt"
	"strings"

	"github.com/SAMRAT47/genchat/pkg/llm"
	"github.com/SAMRAT47/genchat/pkg/session"
)

const (
	userPrefix      = "User: "
	assistantPrefix = "Assistant: "
)

// TextExporter renders the plain-text transcript: "User: ..." and
// "Assistant: ..." blocks joined by blank lines.
type TextExporter struct{}

// Export renders the transcript.
func (e *TextExporter) Export(sess *session.Session) ([]byte, error) {
	if sess == nil {
		return nil, fmt.Errorf("session is nil")
	}

	blocks := make([]string, 0, len(sess.Messages))
	for _, msg := range sess.Messages {
		prefix := assistantPrefix
		if msg.Role == llm.RoleUser {
			prefix = userPrefix
		}
		blocks = append(blocks, prefix+msg.Content)
	}

	return []byte(strings.Join(blocks, "\n\n")), nil
}

func (e *TextExporter) FileExtension() string { return ".txt" }
func (e *TextExporter) MimeType() string      { return "text/plain" }

// ParseTranscript reads an exported text transcript back into ordered
// messages. A line starting with a role prefix opens a new message;
// other lines continue the current message's content.
func ParseTranscript(data []byte) ([]llm.Message, error) {
	var (
		messages []llm.Message
		current  *llm.Message
	)

	flush := func() {
		if current != nil {
			// Drop the separator blank line that precedes the next block.
			current.Content = strings.TrimSuffix(current.Content, "\n")
			messages = append(messages, *current)
			current = nil
		}
	}

	for _, line := range strings.Split(string(data), "\n") {
		switch {
		case strings.HasPrefix(line, userPrefix):
			flush()
			current = &llm.Message{Role: llm.RoleUser, Content: strings.TrimPrefix(line, userPrefix)}
		case strings.HasPrefix(line, assistantPrefix):
			flush()
			current = &llm.Message{Role: llm.RoleAssistant, Content: strings.TrimPrefix(line, assistantPrefix)}
		case current != nil:
			current.Content += "\n" + line
		case strings.TrimSpace(line) == "":
			// Leading blank lines are fine.
		default:
			return nil, fmt.Errorf("transcript line %q precedes any role prefix", line)
		}
	}
	flush()

	return messages, nil
}
