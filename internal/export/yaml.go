package export

import (
	"io"

	"github.com/iksnae/cc-fi/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports sessions as a YAML sequence
type YAMLExporter struct{}

// Export exports sessions to YAML format
func (e *YAMLExporter) Export(sessions []internal.Session, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	if sessions == nil {
		sessions = []internal.Session{}
	}
	return enc.Encode(sessions)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
