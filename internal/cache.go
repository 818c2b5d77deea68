package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// CacheStore persists the processed session list between invocations
type CacheStore interface {
	IsValid(ttl time.Duration) bool
	Load() ([]Session, error)
	Save(sessions []Session) error
	Invalidate() error
}

// NewCacheStore returns the store selected by cfg.Backend
func NewCacheStore(cfg CacheConfig) (CacheStore, error) {
	switch cfg.Backend {
	case CacheBackendJSON, "":
		return NewFileStore(cfg.Path), nil
	case CacheBackendSQLite:
		return NewSQLiteStore(strings.TrimSuffix(cfg.Path, filepath.Ext(cfg.Path)) + ".db"), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s (supported: json, sqlite)", cfg.Backend)
	}
}

// cacheBlob is the on-disk shape of the JSON cache
type cacheBlob struct {
	Timestamp float64       `json:"timestamp"`
	Sessions  []cacheRecord `json:"sessions"`
}

// cacheRecord mirrors Session with tolerant time decoding
type cacheRecord struct {
	SessionID        string    `json:"session_id"`
	Cwd              string    `json:"cwd"`
	ProjectName      string    `json:"project_name"`
	GitBranch        string    `json:"git_branch"`
	Timestamp        cacheTime `json:"timestamp"`
	FirstMessage     string    `json:"first_message"`
	LastMessage      string    `json:"last_message"`
	FirstMessageFull string    `json:"first_message_full"`
	LastMessageFull  string    `json:"last_message_full"`
	MessageCount     int       `json:"message_count"`
	SourcePath       string    `json:"source_path"`
	LastModified     cacheTime `json:"last_modified"`
	FullContent      string    `json:"full_content"`

	// LegacyFilePath is where older caches stored SourcePath
	LegacyFilePath string `json:"file_path,omitempty"`
}

func newCacheRecord(s Session) cacheRecord {
	return cacheRecord{
		SessionID:        s.SessionID,
		Cwd:              s.Cwd,
		ProjectName:      s.ProjectName,
		GitBranch:        s.GitBranch,
		Timestamp:        cacheTime(s.Timestamp),
		FirstMessage:     s.FirstMessage,
		LastMessage:      s.LastMessage,
		FirstMessageFull: s.FirstMessageFull,
		LastMessageFull:  s.LastMessageFull,
		MessageCount:     s.MessageCount,
		SourcePath:       s.SourcePath,
		LastModified:     cacheTime(s.LastModified),
		FullContent:      s.FullContent,
	}
}

func (r cacheRecord) session(index int) (Session, error) {
	switch {
	case r.SessionID == "":
		return Session{}, &RecordError{Index: index, Field: "session_id"}
	case time.Time(r.Timestamp).IsZero():
		return Session{}, &RecordError{Index: index, Field: "timestamp"}
	case time.Time(r.LastModified).IsZero():
		return Session{}, &RecordError{Index: index, Field: "last_modified"}
	}
	if r.SourcePath == "" {
		r.SourcePath = r.LegacyFilePath
	}
	return Session{
		SessionID:        r.SessionID,
		Cwd:              r.Cwd,
		ProjectName:      r.ProjectName,
		GitBranch:        r.GitBranch,
		Timestamp:        time.Time(r.Timestamp),
		FirstMessage:     r.FirstMessage,
		LastMessage:      r.LastMessage,
		FirstMessageFull: r.FirstMessageFull,
		LastMessageFull:  r.LastMessageFull,
		MessageCount:     r.MessageCount,
		SourcePath:       r.SourcePath,
		LastModified:     time.Time(r.LastModified),
		FullContent:      r.FullContent,
	}, nil
}

// cacheTime encodes as RFC 3339 and also decodes naive ISO-8601 strings and
// epoch seconds written by older caches.
type cacheTime time.Time

func (c cacheTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(c).Format(time.RFC3339Nano))
}

func (c *cacheTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = cacheTime{}
		return nil
	}

	var epoch float64
	if err := json.Unmarshal(data, &epoch); err == nil {
		*c = cacheTime(epochToTime(epoch))
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("time must be a string or a number: %w", err)
	}
	t, err := parseCacheTime(s)
	if err != nil {
		return err
	}
	*c = cacheTime(t)
	return nil
}

var cacheTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func parseCacheTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range cacheTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format: %q", s)
}

func epochToTime(epoch float64) time.Time {
	sec := int64(epoch)
	nsec := int64((epoch - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

func timeToEpoch(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// FileStore keeps the cache as a single JSON file
type FileStore struct {
	path string
	now  func() time.Time
}

// NewFileStore creates a FileStore at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

// WithClock replaces the clock used for TTL checks and write timestamps
func (s *FileStore) WithClock(now func() time.Time) *FileStore {
	s.now = now
	return s
}

// Path returns the cache file location
func (s *FileStore) Path() string {
	return s.path
}

// IsValid reports whether the cache file exists and is younger than ttl
func (s *FileStore) IsValid(ttl time.Duration) bool {
	info, err := os.Stat(s.path)
	if err != nil {
		return false
	}
	return s.now().Sub(info.ModTime()) < ttl
}

// Load reads every session from the cache file
func (s *FileStore) Load() ([]Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &CacheDecodeError{Path: s.path, Err: err}
	}

	var blob cacheBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, &CacheDecodeError{Path: s.path, Err: err}
	}
	if blob.Sessions == nil {
		return nil, &CacheDecodeError{Path: s.path, Err: errors.New("missing sessions list")}
	}

	sessions := make([]Session, 0, len(blob.Sessions))
	for i, rec := range blob.Sessions {
		session, err := rec.session(i)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	LogDebug("Loaded %d sessions from cache %s", len(sessions), s.path)
	return sessions, nil
}

// Save writes sessions atomically, replacing any previous cache
func (s *FileStore) Save(sessions []Session) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &CacheWriteError{Path: s.path, Op: "mkdir", Err: err}
	}

	blob := cacheBlob{
		Timestamp: timeToEpoch(s.now()),
		Sessions:  make([]cacheRecord, 0, len(sessions)),
	}
	for _, session := range sessions {
		blob.Sessions = append(blob.Sessions, newCacheRecord(session))
	}

	data, err := json.Marshal(blob)
	if err != nil {
		return &CacheWriteError{Path: s.path, Op: "encode", Err: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return &CacheWriteError{Path: s.path, Op: "write", Err: err}
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &CacheWriteError{Path: s.path, Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &CacheWriteError{Path: s.path, Op: "write", Err: err}
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return &CacheWriteError{Path: s.path, Op: "rename", Err: err}
	}

	LogDebug("Saved %d sessions to cache %s", len(sessions), s.path)
	return nil
}

// Invalidate removes the cache file. A missing file is not an error.
func (s *FileStore) Invalidate() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// CacheManager serves the session list from a CacheStore, rebuilding it
// through the indexer when the cache is stale or unreadable
type CacheManager struct {
	store    CacheStore
	indexer  Indexer
	dedup    *Deduplicator
	ttl      time.Duration
	progress ProgressFunc
}

// NewCacheManager creates a new cache manager
func NewCacheManager(store CacheStore, indexer Indexer, cfg Config) *CacheManager {
	return &CacheManager{
		store:    store,
		indexer:  indexer,
		dedup:    NewDeduplicator(cfg.DedupStrategy),
		ttl:      cfg.Cache.TTL(),
		progress: RunSilently,
	}
}

// WithProgress reports indexing through progress
func (cm *CacheManager) WithProgress(progress ProgressFunc) *CacheManager {
	cm.progress = progress
	return cm
}

// GetWithCache returns the user-visible sessions, most recently modified first.
// Cache problems never surface as errors; indexing errors do.
func (cm *CacheManager) GetWithCache(ctx context.Context, forceRebuild bool) ([]Session, error) {
	if !forceRebuild && cm.store.IsValid(cm.ttl) {
		sessions, err := cm.store.Load()
		if err == nil {
			LogDebug("Using cached sessions")
			return SortByRecency(FilterEmptySessions(sessions)), nil
		}
		LogWarn("Cache unreadable, rebuilding: %v", err)
	}

	return cm.Rebuild(ctx)
}

// Rebuild indexes from scratch and refreshes the cache
func (cm *CacheManager) Rebuild(ctx context.Context) ([]Session, error) {
	LogInfo("Building session index...")
	var raw []Session
	err := cm.progress(ctx, "Indexing sessions", func() error {
		var err error
		raw, err = cm.indexer.Index(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	sessions := FilterEmptySessions(cm.dedup.Deduplicate(raw))

	if err := cm.store.Save(sessions); err != nil {
		LogWarn("Failed to write cache: %v", err)
	}

	return SortByRecency(sessions), nil
}

// Invalidate discards the cached snapshot
func (cm *CacheManager) Invalidate() error {
	return cm.store.Invalidate()
}

// FilterEmptySessions returns the sessions that have message content
func FilterEmptySessions(sessions []Session) []Session {
	filtered := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		if s.HasContent() {
			filtered = append(filtered, s)
		}
	}
	if dropped := len(sessions) - len(filtered); dropped > 0 {
		LogDebug("Dropped %d sessions without content", dropped)
	}
	return filtered
}

// SortByRecency returns a copy of sessions ordered by LastModified, newest first
func SortByRecency(sessions []Session) []Session {
	sorted := append([]Session(nil), sessions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LastModified.After(sorted[j].LastModified)
	})
	return sorted
}
