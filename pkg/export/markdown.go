package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/SAMRAT47/genchat/pkg/llm"
	"github.com/SAMRAT47/genchat/pkg/session"
)

// MarkdownExporter renders the transcript as a Markdown document with a
// small metadata header.
type MarkdownExporter struct{}

// Export renders the transcript.
func (e *MarkdownExporter) Export(sess *session.Session) ([]byte, error) {
	if sess == nil {
		return nil, fmt.Errorf("session is nil")
	}

	var sb strings.Builder

	sb.WriteString("# Chat Transcript\n\n")
	sb.WriteString(fmt.Sprintf("- **Session**: %s\n", sess.ID))
	if !sess.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("- **Created**: %s\n", sess.CreatedAt.Format(time.RFC3339)))
	}
	sb.WriteString(fmt.Sprintf("- **Messages**: %d\n\n", len(sess.Messages)))
	sb.WriteString("---\n\n")

	for _, msg := range sess.Messages {
		heading := "Assistant"
		if msg.Role == llm.RoleUser {
			heading = "User"
		}
		sb.WriteString(fmt.Sprintf("### %s\n\n%s\n\n", heading, msg.Content))
	}

	return []byte(sb.String()), nil
}

func (e *MarkdownExporter) FileExtension() string { return ".md" }
func (e *MarkdownExporter) MimeType() string      { return "text/markdown" }
