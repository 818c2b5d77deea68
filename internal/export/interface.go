// Package export writes session lists in machine- and human-readable formats.
package export

import (
	"fmt"
	"io"

	"github.com/iksnae/cc-fi/internal"
)

// Formats lists the supported export format names
var Formats = []string{"json", "jsonl", "yaml", "md"}

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(sessions []internal.Session, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: jsonl, md, yaml, json)", format)
	}
}
