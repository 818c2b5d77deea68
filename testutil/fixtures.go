package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TranscriptRecord describes one line of a Claude Code session transcript
type TranscriptRecord struct {
	Type      string // "user", "assistant", "summary", ...
	SessionID string
	Cwd       string
	GitBranch string
	Timestamp time.Time
	Text      string
	// Blocks puts Text into a [{"type":"text"}] content array instead of a plain string
	Blocks bool
	IsMeta bool
}

// MarshalLine renders the record as one JSONL line
func (r TranscriptRecord) MarshalLine(t *testing.T) string {
	t.Helper()
	obj := map[string]interface{}{
		"type": r.Type,
		"uuid": r.Type + "-" + r.Timestamp.Format("150405.000"),
	}
	if r.SessionID != "" {
		obj["sessionId"] = r.SessionID
	}
	if r.Cwd != "" {
		obj["cwd"] = r.Cwd
	}
	if r.GitBranch != "" {
		obj["gitBranch"] = r.GitBranch
	}
	if !r.Timestamp.IsZero() {
		obj["timestamp"] = r.Timestamp.UTC().Format(time.RFC3339Nano)
	}
	if r.IsMeta {
		obj["isMeta"] = true
	}
	if r.Type == "user" || r.Type == "assistant" {
		var content interface{} = r.Text
		if r.Blocks {
			content = []map[string]string{{"type": "text", "text": r.Text}}
		}
		obj["message"] = map[string]interface{}{"role": r.Type, "content": content}
	}
	return string(JSONMarshal(t, obj))
}

// UserRecord returns a plain user message record
func UserRecord(sessionID, cwd string, ts time.Time, text string) TranscriptRecord {
	return TranscriptRecord{Type: "user", SessionID: sessionID, Cwd: cwd, GitBranch: "main", Timestamp: ts, Text: text}
}

// AssistantRecord returns an assistant reply record
func AssistantRecord(sessionID, cwd string, ts time.Time, text string) TranscriptRecord {
	return TranscriptRecord{Type: "assistant", SessionID: sessionID, Cwd: cwd, GitBranch: "main", Timestamp: ts, Text: text, Blocks: true}
}

// WriteTranscript writes records as a .jsonl file and returns its path
func WriteTranscript(t *testing.T, path string, records ...TranscriptRecord) string {
	t.Helper()
	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, r.MarshalLine(t))
	}
	return WriteRawTranscript(t, path, strings.Join(lines, "\n")+"\n")
}

// WriteRawTranscript writes arbitrary content to path, creating parent directories
func WriteRawTranscript(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create transcript directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write transcript %s: %v", path, err)
	}
	return path
}

// ProjectDirName encodes a working directory the way Claude Code names project folders
func ProjectDirName(cwd string) string {
	return strings.ReplaceAll(cwd, string(filepath.Separator), "-")
}

// CreateCacheFixture creates a cache file fixture
func CreateCacheFixture(t *testing.T, cachePath string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(cachePath), 0755); err != nil {
		t.Fatalf("Failed to create cache directory: %v", err)
	}
	if err := os.WriteFile(cachePath, data, 0644); err != nil {
		t.Fatalf("Failed to write cache file: %v", err)
	}
}

// CreateMockClaudeDir creates a mock ~/.claude directory with two projects,
// one agent transcript and one unrelated file. It returns the .claude path.
func CreateMockClaudeDir(t *testing.T) string {
	t.Helper()
	claudeDir := filepath.Join(CreateTempDir(t), ".claude")
	base := time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)

	apiCwd := "/home/dev/projects/api-server"
	apiDir := filepath.Join(claudeDir, "projects", ProjectDirName(apiCwd))
	WriteTranscript(t, filepath.Join(apiDir, "11111111-aaaa.jsonl"),
		UserRecord("11111111-aaaa", apiCwd, base, "Add rate limiting to the login endpoint"),
		AssistantRecord("11111111-aaaa", apiCwd, base.Add(time.Minute), "Sure, here is a token bucket."),
		UserRecord("11111111-aaaa", apiCwd, base.Add(2*time.Minute), "Now write tests for it"),
	)
	WriteTranscript(t, filepath.Join(apiDir, "agent-deadbeef.jsonl"),
		UserRecord("agent-deadbeef", apiCwd, base, "sub-agent prompt"),
	)

	webCwd := "/home/dev/projects/web-client"
	webDir := filepath.Join(claudeDir, "projects", ProjectDirName(webCwd))
	WriteTranscript(t, filepath.Join(webDir, "22222222-bbbb.jsonl"),
		UserRecord("22222222-bbbb", webCwd, base.Add(time.Hour), "Why does the navbar flicker on scroll?"),
		AssistantRecord("22222222-bbbb", webCwd, base.Add(time.Hour+time.Minute), "It re-renders on every scroll event."),
	)
	WriteRawTranscript(t, filepath.Join(webDir, "notes.txt"), "not a transcript\n")

	return claudeDir
}
