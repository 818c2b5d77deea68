package internal

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshot (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	written_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS sessions (
	position INTEGER PRIMARY KEY,
	session_id TEXT NOT NULL,
	cwd TEXT NOT NULL DEFAULT '',
	project_name TEXT NOT NULL DEFAULT '',
	git_branch TEXT NOT NULL DEFAULT '',
	timestamp TEXT NOT NULL,
	first_message TEXT NOT NULL DEFAULT '',
	last_message TEXT NOT NULL DEFAULT '',
	first_message_full TEXT NOT NULL DEFAULT '',
	last_message_full TEXT NOT NULL DEFAULT '',
	message_count INTEGER NOT NULL DEFAULT 0,
	source_path TEXT NOT NULL DEFAULT '',
	last_modified TEXT NOT NULL,
	full_content TEXT
);`

const sessionColumns = `session_id, cwd, project_name, git_branch, timestamp,
	first_message, last_message, first_message_full, last_message_full,
	message_count, source_path, last_modified, full_content`

// OpenDatabase opens a SQLite database, read-only when readOnly is set
func OpenDatabase(path string, readOnly bool) (*sql.DB, error) {
	dsn := path
	if readOnly {
		// mode is only honoured in URI form
		dsn = "file:" + path + "?mode=ro"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return db, nil
}

func ensureSchema(db *sql.DB) error {
	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
