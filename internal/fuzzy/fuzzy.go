// Package fuzzy provides the approximate string matching used by rules that
// correct typos in subcommands, paths and program names.
package fuzzy

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// DefaultThreshold is the minimum similarity a candidate needs by default.
const DefaultThreshold = 0.6

// Match is one candidate that passed the threshold.
type Match struct {
	Candidate  string
	Similarity float64
	Index      int // position in the original candidate slice
}

// Similarity returns 1 - editDistance/maxLen over the lower-cased inputs.
// Identical strings (including two empty strings) score 1.0.
func Similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}

// Rank scores every candidate against query and returns those whose
// similarity is at least threshold.
//
// Ordering:
//   - higher similarity first
//   - shorter candidate first
//   - original candidate order
func Rank(query string, candidates []string, threshold float64) []Match {
	if query == "" || len(candidates) == 0 {
		return nil
	}
	threshold = clamp(threshold)

	matches := make([]Match, 0, len(candidates))
	for i, c := range candidates {
		s := Similarity(query, c)
		if s < threshold {
			continue
		}
		matches = append(matches, Match{Candidate: c, Similarity: s, Index: i})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		li := utf8.RuneCountInString(matches[i].Candidate)
		lj := utf8.RuneCountInString(matches[j].Candidate)
		if li != lj {
			return li < lj
		}
		return matches[i].Index < matches[j].Index
	})

	return matches
}

// Best returns the top ranked candidate, if any qualifies.
func Best(query string, candidates []string, threshold float64) (Match, bool) {
	matches := Rank(query, candidates, threshold)
	if len(matches) == 0 {
		return Match{}, false
	}
	return matches[0], true
}

// Transposed reports whether b is a with exactly one pair of adjacent
// characters swapped, e.g. "psuh" and "push". Comparison ignores case.
func Transposed(a, b string) bool {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))
	if len(ra) != len(rb) || len(ra) < 2 {
		return false
	}
	i := 0
	for i < len(ra) && ra[i] == rb[i] {
		i++
	}
	if i >= len(ra)-1 {
		return false
	}
	if ra[i] != rb[i+1] || ra[i+1] != rb[i] {
		return false
	}
	return string(ra[i+2:]) == string(rb[i+2:])
}

// clamp bounds t to [0, 1]. NaN falls back to DefaultThreshold.
func clamp(t float64) float64 {
	if math.IsNaN(t) {
		return DefaultThreshold
	}
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

type thresholdKey struct{}

// WithThreshold attaches a request-level minimum similarity to ctx.
func WithThreshold(ctx context.Context, t float64) context.Context {
	return context.WithValue(ctx, thresholdKey{}, clamp(t))
}

// ThresholdFrom returns the threshold stored in ctx, or fallback.
func ThresholdFrom(ctx context.Context, fallback float64) float64 {
	if t, ok := ctx.Value(thresholdKey{}).(float64); ok {
		return t
	}
	return fallback
}
