package internal

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/iksnae/cc-fi/internal/textutil"
	"github.com/tidwall/gjson"
)

// maxLineSize bounds a single transcript record; tool output can be large
const maxLineSize = 64 * 1024 * 1024

// Parse failure reasons
const (
	ReasonUnreadable      = "unreadable file"
	ReasonMalformedLeader = "malformed leading record"
	ReasonMissingField    = "missing required field"
)

// Parser turns one transcript file into a Session
type Parser interface {
	ParseFile(path string) (Session, error)
}

// TranscriptParser reads Claude Code JSONL transcripts
type TranscriptParser struct {
	previewLength int
	detailLength  int
	registry      *PatternRegistry
}

// NewTranscriptParser creates a parser using the display preview bounds and
// the default boilerplate patterns
func NewTranscriptParser(display DisplayConfig) *TranscriptParser {
	return &TranscriptParser{
		previewLength: display.PreviewLength,
		detailLength:  display.DetailLength,
		registry:      defaultRegistry,
	}
}

// WithRegistry replaces the boilerplate patterns
func (p *TranscriptParser) WithRegistry(registry *PatternRegistry) *TranscriptParser {
	p.registry = registry
	return p
}

// transcriptState accumulates metadata while scanning records
type transcriptState struct {
	sessionID    string
	cwd          string
	gitBranch    string
	timestamp    time.Time
	messageCount int
	userTexts    []string
}

// ParseFile parses the transcript at path
func (p *TranscriptParser) ParseFile(path string) (Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return Session{}, &ParseError{Path: path, Reason: ReasonUnreadable, Err: err}
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return Session{}, &ParseError{Path: path, Reason: ReasonUnreadable, Err: err}
	}

	var st transcriptState
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	leading := true
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !gjson.Valid(line) {
			if leading {
				return Session{}, &ParseError{Path: path, Reason: ReasonMalformedLeader,
					Err: fmt.Errorf("line %d is not valid JSON", lineNo)}
			}
			LogDebug("Skipping malformed record at %s:%d", path, lineNo)
			continue
		}
		leading = false
		p.consume(&st, gjson.Parse(line))
	}
	if err := scanner.Err(); err != nil {
		return Session{}, &ParseError{Path: path, Reason: ReasonUnreadable, Err: err}
	}

	if st.sessionID == "" {
		return Session{}, &ParseError{Path: path, Reason: ReasonMissingField, Err: fmt.Errorf("no record carries sessionId")}
	}

	return p.build(st, path, info.ModTime()), nil
}

func (p *TranscriptParser) consume(st *transcriptState, rec gjson.Result) {
	if st.sessionID == "" {
		st.sessionID = rec.Get("sessionId").String()
	}
	if st.cwd == "" {
		st.cwd = rec.Get("cwd").String()
	}
	if st.gitBranch == "" {
		st.gitBranch = rec.Get("gitBranch").String()
	}
	if st.timestamp.IsZero() {
		if ts, err := time.Parse(time.RFC3339Nano, rec.Get("timestamp").String()); err == nil {
			st.timestamp = ts
		}
	}

	switch rec.Get("type").String() {
	case "assistant":
		st.messageCount++
	case "user":
		if rec.Get("isMeta").Bool() {
			return
		}
		text := extractUserText(rec.Get("message.content"))
		if text == "" {
			// tool results arrive as user records without text blocks
			return
		}
		st.messageCount++
		if p.registry.IsBoilerplate(text) {
			return
		}
		st.userTexts = append(st.userTexts, text)
	}
}

// extractUserText returns the text of a message content that is either a
// plain string or an array of typed blocks
func extractUserText(content gjson.Result) string {
	if content.Type == gjson.String {
		return strings.TrimSpace(content.String())
	}
	if !content.IsArray() {
		return ""
	}

	var parts []string
	content.ForEach(func(_, block gjson.Result) bool {
		if block.Get("type").String() == "text" {
			if t := strings.TrimSpace(block.Get("text").String()); t != "" {
				parts = append(parts, t)
			}
		}
		return true
	})
	return strings.Join(parts, "\n")
}

func (p *TranscriptParser) build(st transcriptState, path string, mtime time.Time) Session {
	timestamp := st.timestamp
	if timestamp.IsZero() {
		timestamp = mtime
	}

	var first, last string
	if n := len(st.userTexts); n > 0 {
		first = st.userTexts[0]
		last = st.userTexts[n-1]
	}

	return Session{
		SessionID:        st.sessionID,
		Cwd:              st.cwd,
		ProjectName:      ProjectNameFromCwd(st.cwd),
		GitBranch:        st.gitBranch,
		Timestamp:        timestamp,
		FirstMessage:     textutil.Truncate(first, p.previewLength),
		LastMessage:      textutil.Truncate(last, p.previewLength),
		FirstMessageFull: textutil.Truncate(first, p.detailLength),
		LastMessageFull:  textutil.Truncate(last, p.detailLength),
		MessageCount:     st.messageCount,
		SourcePath:       path,
		LastModified:     mtime,
		FullContent:      strings.Join(st.userTexts, "\n"),
	}
}
