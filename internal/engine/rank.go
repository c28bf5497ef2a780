package engine

import (
	"sort"

	"github.com/vietddude/fixer/internal/core/domain"
)

// Rank deduplicates candidates by normalized command and orders them.
//
// Among duplicates the survivor has the higher confidence, then the lower
// priority, then the earlier rule index, then the earlier emission.
// The result is sorted by confidence desc, priority asc, rule index asc,
// emission asc and finally command text, then truncated to maxResults
// (<= 0 means the default of 10).
func Rank(candidates []Candidate, maxResults int) []domain.Correction {
	if maxResults <= 0 {
		maxResults = DefaultOptions().MaxResults
	}
	if len(candidates) == 0 {
		return []domain.Correction{}
	}

	best := make(map[string]Candidate, len(candidates))
	for _, c := range candidates {
		c.Command = domain.NormalizeCommand(c.Command)
		if c.Command == "" {
			continue
		}
		cur, ok := best[c.Command]
		if !ok || less(c, cur) {
			best[c.Command] = c
		}
	}

	ordered := make([]Candidate, 0, len(best))
	for _, c := range best {
		ordered = append(ordered, c)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if less(ordered[i], ordered[j]) {
			return true
		}
		if less(ordered[j], ordered[i]) {
			return false
		}
		return ordered[i].Command < ordered[j].Command
	})

	if len(ordered) > maxResults {
		ordered = ordered[:maxResults]
	}
	out := make([]domain.Correction, len(ordered))
	for i, c := range ordered {
		out[i] = c.Correction
	}
	return out
}

// less reports whether a ranks ahead of b, ignoring the command text.
func less(a, b Candidate) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	if a.Index != b.Index {
		return a.Index < b.Index
	}
	return a.Seq < b.Seq
}
