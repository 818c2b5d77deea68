package internal

import (
	"sort"
	"strings"
)

// searchFields lists the fields a search term is matched against, in order
func searchFields(s Session) []string {
	return []string{
		s.SessionID,
		s.Cwd,
		s.ProjectName,
		s.GitBranch,
		s.FirstMessage,
		s.LastMessage,
		s.FullContent,
	}
}

// MatchesSearchTerm reports whether term occurs, case-insensitively, in any searchable field
func MatchesSearchTerm(session Session, term string) bool {
	needle := strings.ToLower(term)
	for _, field := range searchFields(session) {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// FilterSessions returns the sessions matching term, preserving order.
// An empty term matches everything.
func FilterSessions(sessions []Session, term string) []Session {
	if term == "" {
		return sessions
	}
	matched := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		if MatchesSearchTerm(s, term) {
			matched = append(matched, s)
		}
	}
	return matched
}

// FindSessionByID returns the first session with exactly the given ID
func FindSessionByID(sessions []Session, id string) (Session, bool) {
	for _, s := range sessions {
		if s.SessionID == id {
			return s, true
		}
	}
	return Session{}, false
}

// UniqueProjects returns the distinct project names, sorted
func UniqueProjects(sessions []Session) []string {
	seen := make(map[string]bool)
	var projects []string
	for _, s := range sessions {
		if !seen[s.ProjectName] {
			seen[s.ProjectName] = true
			projects = append(projects, s.ProjectName)
		}
	}
	sort.Strings(projects)
	return projects
}
