package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/cc-fi/internal"
)

// JSONExporter exports sessions as one pretty-printed JSON array
type JSONExporter struct{}

// Export exports sessions to JSON format
func (e *JSONExporter) Export(sessions []internal.Session, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if sessions == nil {
		sessions = []internal.Session{}
	}
	return enc.Encode(sessions)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
