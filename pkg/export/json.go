package export

import (
	"encoding/json"
	"fmt"

	"github.com/SAMRAT47/genchat/pkg/session"
)

// JSONExporter renders the session as indented JSON, messages in
// insertion order.
type JSONExporter struct{}

// Export renders the transcript.
func (e *JSONExporter) Export(sess *session.Session) ([]byte, error) {
	if sess == nil {
		return nil, fmt.Errorf("session is nil")
	}
	return json.MarshalIndent(sess, "", "  ")
}

func (e *JSONExporter) FileExtension() string { return ".json" }
func (e *JSONExporter) MimeType() string      { return "application/json" }
