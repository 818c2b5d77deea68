package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iksnae/cc-fi/internal"
)

func TestJSONExporter_Export(t *testing.T) {
	tests := []struct {
		name     string
		sessions []internal.Session
		wantLen  int
	}{
		{
			name:     "single session",
			sessions: []internal.Session{internal.CreateTestSession("test1")},
			wantLen:  1,
		},
		{
			name: "several sessions",
			sessions: []internal.Session{
				internal.CreateTestSession("test1"),
				internal.CreateTestSessionWithMessages("test2", "ünïcode ✓", ""),
			},
			wantLen: 2,
		},
		{
			name:     "no sessions",
			sessions: nil,
			wantLen:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			exporter := &JSONExporter{}

			if err := exporter.Export(tt.sessions, &buf); err != nil {
				t.Fatalf("JSONExporter.Export() error = %v", err)
			}

			output := buf.String()
			var decoded []internal.Session
			if err := json.Unmarshal([]byte(output), &decoded); err != nil {
				t.Fatalf("Output is not a valid JSON array: %v\nOutput: %s", err, output)
			}
			if len(decoded) != tt.wantLen {
				t.Errorf("decoded %d sessions, want %d", len(decoded), tt.wantLen)
			}
			for i := range decoded {
				if decoded[i].SessionID != tt.sessions[i].SessionID {
					t.Errorf("session %d = %q, want %q", i, decoded[i].SessionID, tt.sessions[i].SessionID)
				}
				if !decoded[i].Timestamp.Equal(tt.sessions[i].Timestamp) {
					t.Errorf("session %d timestamp = %v", i, decoded[i].Timestamp)
				}
			}

			if tt.wantLen > 0 && !strings.Contains(output, "\n  ") {
				t.Errorf("Output should be pretty-printed with indentation")
			}
		})
	}
}

func TestJSONExporter_Extension(t *testing.T) {
	exporter := &JSONExporter{}
	if got := exporter.Extension(); got != "json" {
		t.Errorf("JSONExporter.Extension() = %v, want json", got)
	}
}
