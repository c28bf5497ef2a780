package domain

import (
	"math"
	"strings"
)

// Correction is one proposed replacement command line.
type Correction struct {
	Command    string  `json:"command"`
	RuleID     string  `json:"rule_id"`
	Confidence float64 `json:"confidence"`
	Priority   int     `json:"priority"`
}

// Confidence levels per matching strategy.
const (
	ConfidenceLiteral   = 1.0
	ConfidenceComposite = 0.95
	ConfidenceRegex     = 0.9
	ConfidenceFuzzyMin  = 0.4
	ConfidenceFuzzyMax  = 0.85
)

// NormalizeCommand trims the command and collapses internal whitespace.
// Two corrections with the same normalized text are duplicates.
func NormalizeCommand(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ClampConfidence forces c into [0, 1].
func ClampConfidence(c float64) float64 {
	if math.IsNaN(c) || c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
