package internal

import "fmt"

// DiscoveryError is returned when the session root directory is missing
type DiscoveryError struct {
	Path string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("Claude projects directory not found: %s. "+
		"Ensure Claude Code is installed and has been run at least once", e.Path)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// ParseError represents a transcript file that could not be turned into a session
type ParseError struct {
	Path   string
	Reason string // "unreadable file", "malformed leading record", "missing required field"
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error [%s] %s: %v", e.Reason, e.Path, e.Err)
	}
	return fmt.Sprintf("parse error [%s] %s", e.Reason, e.Path)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// CacheDecodeError represents a cache blob that is unreadable or structurally invalid
type CacheDecodeError struct {
	Path string
	Err  error
}

func (e *CacheDecodeError) Error() string {
	return fmt.Sprintf("cache decode error %s: %v", e.Path, e.Err)
}

func (e *CacheDecodeError) Unwrap() error {
	return e.Err
}

// RecordError represents a cached record missing a required field
type RecordError struct {
	Index int
	Field string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("cache record %d: missing required field %q", e.Index, e.Field)
}

// CacheWriteError represents a failure to persist the cache
type CacheWriteError struct {
	Path string
	Op   string // "mkdir", "encode", "write", "rename"
	Err  error
}

func (e *CacheWriteError) Error() string {
	return fmt.Sprintf("cache write error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *CacheWriteError) Unwrap() error {
	return e.Err
}

// ToolMissingError is returned when an external program is not installed
type ToolMissingError struct {
	Tool string
	Hint string
	Err  error
}

func (e *ToolMissingError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s is not installed. %s", e.Tool, e.Hint)
	}
	return fmt.Sprintf("%s is not installed", e.Tool)
}

func (e *ToolMissingError) Unwrap() error {
	return e.Err
}
