// Package export turns a session's message sequence into downloadable
// transcripts. The text format round-trips: re-parsing an exported
// transcript recovers the same ordered messages.
package export

import (
	"fmt"
	"time"

	"github.com/SAMRAT47/genchat/pkg/session"
)

// Exporter converts a session to one output format.
type Exporter interface {
	// Export renders the session's transcript.
	Export(sess *session.Session) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g., ".txt").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// Formats supported by New.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// New returns the exporter for the named format.
func New(format string) (Exporter, error) {
	switch format {
	case FormatText, "":
		return &TextExporter{}, nil
	case FormatMarkdown:
		return &MarkdownExporter{}, nil
	case FormatJSON:
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// Filename builds the download filename, chat_YYYYMMDD_HHMMSS plus the
// exporter's extension.
func Filename(e Exporter, now time.Time) string {
	return fmt.Sprintf("chat_%s%s", now.Format("20060102_150405"), e.FileExtension())
}
