package internal

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SQLiteStore keeps the cache in a SQLite database file
type SQLiteStore struct {
	path string
	now  func() time.Time
}

// NewSQLiteStore creates a SQLiteStore at path
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path, now: time.Now}
}

// WithClock replaces the clock used for TTL checks and write timestamps
func (s *SQLiteStore) WithClock(now func() time.Time) *SQLiteStore {
	s.now = now
	return s
}

// Path returns the database location
func (s *SQLiteStore) Path() string {
	return s.path
}

// IsValid reports whether a snapshot exists and was written less than ttl ago
func (s *SQLiteStore) IsValid(ttl time.Duration) bool {
	if _, err := os.Stat(s.path); err != nil {
		return false
	}
	db, err := OpenDatabase(s.path, true)
	if err != nil {
		return false
	}
	defer func() { _ = db.Close() }()

	var writtenAt int64
	if err := db.QueryRow("SELECT written_at FROM snapshot WHERE id = 1").Scan(&writtenAt); err != nil {
		return false
	}
	return s.now().Sub(time.Unix(0, writtenAt)) < ttl
}

// Load reads every session in insertion order
func (s *SQLiteStore) Load() ([]Session, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, &CacheDecodeError{Path: s.path, Err: err}
	}
	db, err := OpenDatabase(s.path, true)
	if err != nil {
		return nil, &CacheDecodeError{Path: s.path, Err: err}
	}
	defer func() { _ = db.Close() }()

	rows, err := db.Query("SELECT " + sessionColumns + " FROM sessions ORDER BY position")
	if err != nil {
		return nil, &CacheDecodeError{Path: s.path, Err: fmt.Errorf("query failed: %w", err)}
	}
	defer func() { _ = rows.Close() }()

	var sessions []Session
	for i := 0; rows.Next(); i++ {
		var (
			rec                     cacheRecord
			timestamp, lastModified string
			fullContent             sql.NullString
		)
		if err := rows.Scan(&rec.SessionID, &rec.Cwd, &rec.ProjectName, &rec.GitBranch, &timestamp,
			&rec.FirstMessage, &rec.LastMessage, &rec.FirstMessageFull, &rec.LastMessageFull,
			&rec.MessageCount, &rec.SourcePath, &lastModified, &fullContent); err != nil {
			return nil, &CacheDecodeError{Path: s.path, Err: fmt.Errorf("scan failed: %w", err)}
		}

		ts, err := parseCacheTime(timestamp)
		if err != nil {
			return nil, &CacheDecodeError{Path: s.path, Err: err}
		}
		lm, err := parseCacheTime(lastModified)
		if err != nil {
			return nil, &CacheDecodeError{Path: s.path, Err: err}
		}
		rec.Timestamp = cacheTime(ts)
		rec.LastModified = cacheTime(lm)
		rec.FullContent = fullContent.String

		session, err := rec.session(i)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, &CacheDecodeError{Path: s.path, Err: fmt.Errorf("rows iteration error: %w", err)}
	}
	if sessions == nil {
		sessions = []Session{}
	}

	LogDebug("Loaded %d sessions from cache %s", len(sessions), s.path)
	return sessions, nil
}

// Save replaces the stored snapshot in one transaction
func (s *SQLiteStore) Save(sessions []Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return &CacheWriteError{Path: s.path, Op: "mkdir", Err: err}
	}
	db, err := OpenDatabase(s.path, false)
	if err != nil {
		return &CacheWriteError{Path: s.path, Op: "open", Err: err}
	}
	defer func() { _ = db.Close() }()

	if err := ensureSchema(db); err != nil {
		return &CacheWriteError{Path: s.path, Op: "write", Err: err}
	}
	if err := s.replaceSnapshot(db, sessions); err != nil {
		return &CacheWriteError{Path: s.path, Op: "write", Err: err}
	}

	LogDebug("Saved %d sessions to cache %s", len(sessions), s.path)
	return nil
}

func (s *SQLiteStore) replaceSnapshot(db *sql.DB, sessions []Session) (err error) {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec("DELETE FROM sessions"); err != nil {
		return err
	}

	stmt, err := tx.Prepare("INSERT INTO sessions (position, " + sessionColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, session := range sessions {
		if _, err = stmt.Exec(i, session.SessionID, session.Cwd, session.ProjectName, session.GitBranch,
			session.Timestamp.Format(time.RFC3339Nano),
			session.FirstMessage, session.LastMessage, session.FirstMessageFull, session.LastMessageFull,
			session.MessageCount, session.SourcePath,
			session.LastModified.Format(time.RFC3339Nano), session.FullContent); err != nil {
			return err
		}
	}

	if _, err = tx.Exec("INSERT OR REPLACE INTO snapshot (id, written_at) VALUES (1, ?)", s.now().UnixNano()); err != nil {
		return err
	}

	return tx.Commit()
}

// Invalidate removes the database file. A missing file is not an error.
func (s *SQLiteStore) Invalidate() error {
	for _, p := range []string{s.path, s.path + "-journal", s.path + "-wal", s.path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}
