package internal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/cc-fi/testutil"
)

func TestSQLiteStore_RoundTrip(t *testing.T) {
	path := filepath.Join(testutil.CreateTempDir(t), "sub", "cache.db")
	store := NewSQLiteStore(path)

	long := CreateTestSession("long")
	long.FullContent = strings.Repeat("deep search content ", 5000)
	sessions := []Session{long, CreateTestSessionWithMessages("unicode", "héllo 世界", "🎉"), CreateTestSession("plain")}

	if err := store.Save(sessions); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	assertSessionsEqual(t, got, sessions)
}

func TestSQLiteStore_SaveReplacesSnapshot(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(testutil.CreateTempDir(t), "cache.db"))

	if err := store.Save([]Session{CreateTestSession("a"), CreateTestSession("b")}); err != nil {
		t.Fatal(err)
	}
	if err := store.Save([]Session{CreateTestSession("c")}); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if ids := sessionIDs(got); strings.Join(ids, ",") != "c" {
		t.Errorf("Load() ids = %v, want [c]", ids)
	}
}

func TestSQLiteStore_IsValid(t *testing.T) {
	written := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	now := written
	store := NewSQLiteStore(filepath.Join(testutil.CreateTempDir(t), "cache.db")).
		WithClock(func() time.Time { return now })
	ttl := 30 * time.Second

	if store.IsValid(ttl) {
		t.Error("IsValid() = true before any save")
	}
	if err := store.Save([]Session{CreateTestSession("a")}); err != nil {
		t.Fatal(err)
	}

	now = written.Add(ttl - time.Second)
	if !store.IsValid(ttl) {
		t.Error("IsValid() = false one second before expiry")
	}
	now = written.Add(ttl + time.Second)
	if store.IsValid(ttl) {
		t.Error("IsValid() = true one second after expiry")
	}
}

func TestSQLiteStore_LoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewSQLiteStore(filepath.Join(testutil.CreateTempDir(t), "none.db")).Load()
		var decodeErr *CacheDecodeError
		if !errors.As(err, &decodeErr) {
			t.Errorf("Load() error = %v, want *CacheDecodeError", err)
		}
	})

	t.Run("not a database", func(t *testing.T) {
		path := filepath.Join(testutil.CreateTempDir(t), "cache.db")
		testutil.CreateCacheFixture(t, path, []byte("{not sqlite}"))
		_, err := NewSQLiteStore(path).Load()
		var decodeErr *CacheDecodeError
		if !errors.As(err, &decodeErr) {
			t.Errorf("Load() error = %v, want *CacheDecodeError", err)
		}
	})

	t.Run("record without session id", func(t *testing.T) {
		path := filepath.Join(testutil.CreateTempDir(t), "cache.db")
		testutil.CreateSQLiteFixture(t, path,
			sqliteSchema,
			`INSERT INTO sessions (position, session_id, timestamp, last_modified)
			 VALUES (0, '', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`,
		)
		_, err := NewSQLiteStore(path).Load()
		var recordErr *RecordError
		if !errors.As(err, &recordErr) || recordErr.Field != "session_id" {
			t.Errorf("Load() error = %v, want *RecordError for session_id", err)
		}
	})

	t.Run("null full content", func(t *testing.T) {
		path := filepath.Join(testutil.CreateTempDir(t), "cache.db")
		testutil.CreateSQLiteFixture(t, path,
			sqliteSchema,
			`INSERT INTO sessions (position, session_id, timestamp, last_modified, first_message)
			 VALUES (0, 'legacy', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z', 'hi')`,
		)
		got, err := NewSQLiteStore(path).Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(got) != 1 || got[0].FullContent != "" {
			t.Errorf("Load() = %+v, want one session with empty FullContent", got)
		}
	})
}

func TestSQLiteStore_Invalidate(t *testing.T) {
	path := filepath.Join(testutil.CreateTempDir(t), "cache.db")
	store := NewSQLiteStore(path)
	if err := store.Save([]Session{CreateTestSession("a")}); err != nil {
		t.Fatal(err)
	}

	if err := store.Invalidate(); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("database still exists after Invalidate()")
	}
	if err := store.Invalidate(); err != nil {
		t.Errorf("second Invalidate() error = %v", err)
	}
}

func TestCacheManager_WithSQLiteStore(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(testutil.CreateTempDir(t), "cache.db"))
	indexer := &stubIndexer{sessions: []Session{distinct("a", ms(1000)), distinct("b", ms(2000))}}
	cm := NewCacheManager(store, indexer, testCacheConfig("both"))

	first, err := cm.GetWithCache(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	second, err := cm.GetWithCache(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}

	if indexer.calls != 1 {
		t.Errorf("indexer called %d times, want 1 (second call should hit the cache)", indexer.calls)
	}
	assertSessionsEqual(t, second, first)
}
