package pipeline

import "github.com/ladepause/ladepause/internal/model"

// Merger reconciles matches from overlapping tiles by uniqueness key.
// The first match seen for a key wins.
type Merger struct {
	seen    map[string]bool
	results []model.Match
}

// NewMerger creates an empty merger
func NewMerger() *Merger {
	return &Merger{seen: make(map[string]bool)}
}

// Add merges one tile's matches and returns how many were new
func (m *Merger) Add(matches []model.Match) int {
	added := 0
	for _, match := range matches {
		if m.seen[match.Key] {
			continue
		}
		m.seen[match.Key] = true
		match.Key = ""
		m.results = append(m.results, match)
		added++
	}
	return added
}

// Len returns the number of merged matches
func (m *Merger) Len() int {
	return len(m.results)
}

// Results returns the merged matches in first-seen order, keys stripped
func (m *Merger) Results() []model.Match {
	out := make([]model.Match, len(m.results))
	copy(out, m.results)
	return out
}
