package internal

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/iksnae/cc-fi/internal/textutil"
	"github.com/kballard/go-shellquote"
)

// fingerprintPrefixLength is how much of the first message takes part in a
// content fingerprint.
const fingerprintPrefixLength = 100

// Session represents one indexed Claude Code session
type Session struct {
	SessionID        string    `json:"session_id" yaml:"session_id"`
	Cwd              string    `json:"cwd" yaml:"cwd"`
	ProjectName      string    `json:"project_name" yaml:"project_name"`
	GitBranch        string    `json:"git_branch" yaml:"git_branch"`
	Timestamp        time.Time `json:"timestamp" yaml:"timestamp"`
	FirstMessage     string    `json:"first_message" yaml:"first_message"`
	LastMessage      string    `json:"last_message" yaml:"last_message"`
	FirstMessageFull string    `json:"first_message_full" yaml:"first_message_full"`
	LastMessageFull  string    `json:"last_message_full" yaml:"last_message_full"`
	MessageCount     int       `json:"message_count" yaml:"message_count"`
	SourcePath       string    `json:"source_path" yaml:"source_path"`
	LastModified     time.Time `json:"last_modified" yaml:"last_modified"`
	FullContent      string    `json:"full_content" yaml:"full_content"`
}

// Fingerprint identifies sessions with identical content under different IDs
type Fingerprint struct {
	Timestamp    string
	FirstMessage string
	Cwd          string
}

// Fingerprint returns the content fingerprint used for deduplication
func (s Session) Fingerprint() Fingerprint {
	return Fingerprint{
		Timestamp:    s.Timestamp.UTC().Format(time.RFC3339Nano),
		FirstMessage: textutil.Prefix(s.FirstMessage, fingerprintPrefixLength),
		Cwd:          s.Cwd,
	}
}

// HasContent reports whether the session has any user message worth showing
func (s Session) HasContent() bool {
	return strings.TrimSpace(s.FirstMessage) != "" || strings.TrimSpace(s.LastMessage) != ""
}

// ResumeCommand returns the shell command that resumes this session. Both the
// directory and the id are quoted for a POSIX shell.
func (s Session) ResumeCommand() string {
	return shellquote.Join("cd", s.Cwd) + " && " + shellquote.Join("claude", "-r", s.SessionID)
}

// ProjectNameFromCwd returns the last path segment of a working directory
func ProjectNameFromCwd(cwd string) string {
	cwd = strings.TrimSpace(cwd)
	if cwd == "" {
		return ""
	}
	name := filepath.Base(filepath.Clean(cwd))
	if name == string(filepath.Separator) || name == "." {
		return ""
	}
	return name
}
