package internal

// Strategy selects how duplicate sessions are detected
type Strategy string

const (
	StrategyNone        Strategy = "none"
	StrategySessionID   Strategy = "session_id"
	StrategyFingerprint Strategy = "fingerprint"
	StrategyBoth        Strategy = "both"

	// strategyIdentity is accepted as an alias of StrategySessionID
	strategyIdentity Strategy = "identity"
)

// ParseStrategy maps a configured name onto a known strategy. Unknown names
// resolve to StrategyBoth and ok is false.
func ParseStrategy(name string) (strategy Strategy, ok bool) {
	switch Strategy(name) {
	case StrategyNone:
		return StrategyNone, true
	case StrategySessionID, strategyIdentity:
		return StrategySessionID, true
	case StrategyFingerprint:
		return StrategyFingerprint, true
	case StrategyBoth, "":
		return StrategyBoth, true
	default:
		return StrategyBoth, false
	}
}

// Deduplicator removes duplicate sessions
type Deduplicator struct {
	strategy Strategy
}

// NewDeduplicator creates a Deduplicator for the named strategy. An unknown
// name is logged and treated as "both".
func NewDeduplicator(name string) *Deduplicator {
	strategy, ok := ParseStrategy(name)
	if !ok {
		LogWarn("Unknown deduplication strategy %q, using %q", name, StrategyBoth)
	}
	return &Deduplicator{strategy: strategy}
}

// Strategy returns the resolved strategy
func (d *Deduplicator) Strategy() Strategy {
	return d.strategy
}

// Deduplicate applies the configured strategy and returns a new slice
func (d *Deduplicator) Deduplicate(sessions []Session) []Session {
	var result []Session
	switch d.strategy {
	case StrategyNone:
		result = append([]Session(nil), sessions...)
	case StrategySessionID:
		result = DeduplicateBySessionID(sessions)
	case StrategyFingerprint:
		result = DeduplicateByFingerprint(sessions)
	default:
		// identity must run before fingerprint
		result = DeduplicateByFingerprint(DeduplicateBySessionID(sessions))
	}

	if removed := len(sessions) - len(result); removed > 0 {
		LogInfo("Removed %d duplicate sessions (strategy: %s)", removed, d.strategy)
	}
	return result
}

// Deduplicate is shorthand for NewDeduplicator(strategy).Deduplicate(sessions)
func Deduplicate(sessions []Session, strategy string) []Session {
	return NewDeduplicator(strategy).Deduplicate(sessions)
}

// DeduplicateBySessionID keeps one session per ID, the one with the latest
// LastModified. Ties keep the first seen. Group order follows first appearance.
func DeduplicateBySessionID(sessions []Session) []Session {
	index := make(map[string]int, len(sessions))
	unique := make([]Session, 0, len(sessions))

	for _, session := range sessions {
		i, seen := index[session.SessionID]
		if !seen {
			index[session.SessionID] = len(unique)
			unique = append(unique, session)
			continue
		}
		if session.LastModified.After(unique[i].LastModified) {
			unique[i] = session
		}
	}

	return unique
}

// DeduplicateByFingerprint keeps the first session seen for each content fingerprint
func DeduplicateByFingerprint(sessions []Session) []Session {
	seen := make(map[Fingerprint]bool, len(sessions))
	unique := make([]Session, 0, len(sessions))

	for _, session := range sessions {
		fp := session.Fingerprint()
		if !seen[fp] {
			seen[fp] = true
			unique = append(unique, session)
		}
	}

	return unique
}
