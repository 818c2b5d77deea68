package internal

import (
	"errors"
	"time"
)

// MemoryStore is a CacheStore held in process memory
type MemoryStore struct {
	sessions []Session
	savedAt  time.Time
	saved    bool
	now      func() time.Time

	// LoadErr and SaveErr, when set, are returned by Load and Save
	LoadErr error
	SaveErr error
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// WithClock replaces the clock used for TTL checks and write timestamps
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

// IsValid reports whether a snapshot exists and is younger than ttl
func (m *MemoryStore) IsValid(ttl time.Duration) bool {
	return m.saved && m.now().Sub(m.savedAt) < ttl
}

// Load returns a copy of the stored snapshot
func (m *MemoryStore) Load() ([]Session, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if !m.saved {
		return nil, &CacheDecodeError{Path: "memory", Err: errors.New("no snapshot")}
	}
	for i, s := range m.sessions {
		switch {
		case s.SessionID == "":
			return nil, &RecordError{Index: i, Field: "session_id"}
		case s.Timestamp.IsZero():
			return nil, &RecordError{Index: i, Field: "timestamp"}
		case s.LastModified.IsZero():
			return nil, &RecordError{Index: i, Field: "last_modified"}
		}
	}
	return append([]Session(nil), m.sessions...), nil
}

// Save replaces the snapshot
func (m *MemoryStore) Save(sessions []Session) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.sessions = append([]Session(nil), sessions...)
	m.savedAt = m.now()
	m.saved = true
	return nil
}

// Invalidate drops the snapshot
func (m *MemoryStore) Invalidate() error {
	m.sessions = nil
	m.saved = false
	return nil
}

// Saved reports whether a snapshot is present
func (m *MemoryStore) Saved() bool {
	return m.saved
}
