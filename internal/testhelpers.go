package internal

import (
	"time"
)

// testEpoch anchors fixture timestamps so tests are deterministic
var testEpoch = time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)

// CreateTestSession creates a test session with sample data
func CreateTestSession(id string) Session {
	return Session{
		SessionID:        id,
		Cwd:              "/home/dev/projects/test-project",
		ProjectName:      "test-project",
		GitBranch:        "main",
		Timestamp:        testEpoch,
		FirstMessage:     "Hello, how are you?",
		LastMessage:      "Thanks, that fixed it",
		FirstMessageFull: "Hello, how are you?",
		LastMessageFull:  "Thanks, that fixed it",
		MessageCount:     4,
		SourcePath:       "/home/dev/.claude/projects/-home-dev-projects-test-project/" + id + ".jsonl",
		LastModified:     testEpoch.Add(time.Hour),
		FullContent:      "Hello, how are you?\nThanks, that fixed it",
	}
}

// CreateTestSessionWithMessages creates a test session with custom first and last messages
func CreateTestSessionWithMessages(id, first, last string) Session {
	s := CreateTestSession(id)
	s.FirstMessage = first
	s.FirstMessageFull = first
	s.LastMessage = last
	s.LastMessageFull = last
	s.FullContent = first
	if last != "" {
		s.FullContent += "\n" + last
	}
	return s
}

// CreateTestSessionModifiedAt creates a test session whose source file was last written at lm
func CreateTestSessionModifiedAt(id string, lm time.Time) Session {
	s := CreateTestSession(id)
	s.LastModified = lm
	return s
}
