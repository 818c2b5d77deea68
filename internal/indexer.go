package internal

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	sessionFileExt  = ".jsonl"
	agentFilePrefix = "agent-"
)

// Indexer produces raw session records
type Indexer interface {
	Index(ctx context.Context) ([]Session, error)
}

// FileIndexer indexes every transcript under a Claude projects directory
type FileIndexer struct {
	projectsDir string
	parser      Parser
}

// NewFileIndexer creates a new FileIndexer
func NewFileIndexer(projectsDir string, parser Parser) *FileIndexer {
	return &FileIndexer{projectsDir: projectsDir, parser: parser}
}

// IsSessionFile reports whether name is a transcript worth indexing.
// Sub-agent transcripts are skipped.
func IsSessionFile(name string) bool {
	return strings.HasSuffix(name, sessionFileExt) && !strings.HasPrefix(name, agentFilePrefix)
}

// FindSessionFiles walks dir recursively for transcript files
func FindSessionFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &DiscoveryError{Path: dir, Err: err}
	}
	if !info.IsDir() {
		return nil, &DiscoveryError{Path: dir, Err: errors.New("not a directory")}
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			LogDebug("Skipping unreadable path %s: %v", path, err)
			if d != nil && d.IsDir() && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && IsSessionFile(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, &DiscoveryError{Path: dir, Err: err}
	}

	return files, nil
}

// Index parses every transcript. Files that fail to parse are logged and skipped.
func (fi *FileIndexer) Index(ctx context.Context) ([]Session, error) {
	start := time.Now()

	files, err := FindSessionFiles(fi.projectsDir)
	if err != nil {
		return nil, err
	}
	LogDebug("Found %d session files in %s", len(files), fi.projectsDir)

	sessions := make([]Session, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		session, err := fi.parser.ParseFile(path)
		if err != nil {
			LogWarn("Failed to parse %s: %v", path, err)
			continue
		}
		sessions = append(sessions, session)
	}

	LogInfo("Indexed %d sessions in %.2fs", len(sessions), time.Since(start).Seconds())
	// newest first, so deduplication keeps the latest copy of a session
	return SortByRecency(sessions), nil
}
