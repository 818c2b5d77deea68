package internal

import (
	"fmt"
	"strings"
)

// PatternKind selects how a boilerplate pattern is matched
type PatternKind int

const (
	// KindPrefix matches text starting with the literal
	KindPrefix PatternKind = iota + 1
	// KindSubstring matches text containing the literal anywhere
	KindSubstring
	// KindLeadingComment matches text opening with a comment marker
	KindLeadingComment
)

func (k PatternKind) String() string {
	switch k {
	case KindPrefix:
		return "prefix"
	case KindSubstring:
		return "substring"
	case KindLeadingComment:
		return "comment"
	default:
		return fmt.Sprintf("PatternKind(%d)", int(k))
	}
}

// BoilerplatePattern is one entry of the boilerplate registry
type BoilerplatePattern struct {
	Kind          PatternKind
	Literal       string
	CaseSensitive bool
}

// matches assumes text is already trimmed.
func (p BoilerplatePattern) matches(text string) bool {
	literal := p.Literal
	if !p.CaseSensitive {
		text = strings.ToLower(text)
		literal = strings.ToLower(literal)
	}

	switch p.Kind {
	case KindSubstring:
		return strings.Contains(text, literal)
	default:
		return strings.HasPrefix(text, literal)
	}
}

// DefaultPatterns lists system-generated text that never reflects user intent
var DefaultPatterns = []BoilerplatePattern{
	// Continuation banners
	{Kind: KindPrefix, Literal: "caveat:"},
	{Kind: KindPrefix, Literal: "this session is being continued"},
	{Kind: KindPrefix, Literal: "this conversation is being continued"},
	{Kind: KindPrefix, Literal: "continuing from previous session"},
	{Kind: KindPrefix, Literal: "[request interrupted by user"},
	// Command invocations
	{Kind: KindSubstring, Literal: "<command-name>", CaseSensitive: true},
	{Kind: KindSubstring, Literal: "<command-message>", CaseSensitive: true},
	{Kind: KindPrefix, Literal: "<local-command-", CaseSensitive: true},
	// OpenSpec system messages
	{Kind: KindLeadingComment, Literal: "<!-- OPENSPEC:", CaseSensitive: true},
}

// PatternRegistry is an ordered, immutable set of boilerplate patterns
type PatternRegistry struct {
	patterns []BoilerplatePattern
}

// NewPatternRegistry validates the patterns and builds a registry
func NewPatternRegistry(patterns ...BoilerplatePattern) (*PatternRegistry, error) {
	copied := make([]BoilerplatePattern, 0, len(patterns))
	for i, p := range patterns {
		switch p.Kind {
		case KindPrefix, KindSubstring, KindLeadingComment:
		default:
			return nil, fmt.Errorf("pattern %d: unknown kind %s", i, p.Kind)
		}
		if strings.TrimSpace(p.Literal) == "" {
			return nil, fmt.Errorf("pattern %d: empty literal", i)
		}
		copied = append(copied, p)
	}
	return &PatternRegistry{patterns: copied}, nil
}

// MustPatternRegistry is like NewPatternRegistry but panics on invalid patterns
func MustPatternRegistry(patterns ...BoilerplatePattern) *PatternRegistry {
	r, err := NewPatternRegistry(patterns...)
	if err != nil {
		panic(err)
	}
	return r
}

// Patterns returns a copy of the registered patterns in registration order
func (r *PatternRegistry) Patterns() []BoilerplatePattern {
	out := make([]BoilerplatePattern, len(r.patterns))
	copy(out, r.patterns)
	return out
}

// IsBoilerplate reports whether text matches any registered pattern.
// Empty or all-whitespace text is absent, not boilerplate.
func (r *PatternRegistry) IsBoilerplate(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	for _, p := range r.patterns {
		if p.matches(trimmed) {
			return true
		}
	}
	return false
}

var defaultRegistry = MustPatternRegistry(DefaultPatterns...)

// IsBoilerplate checks text against the default registry
func IsBoilerplate(text string) bool {
	return defaultRegistry.IsBoilerplate(text)
}
