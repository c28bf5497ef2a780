package engine

import (
	"math"
	"runtime"
	"time"

	"github.com/vietddude/fixer/internal/fuzzy"
)

// Options bounds one correction request.
type Options struct {
	MaxResults        int           `yaml:"max_results"`
	PerRuleTimeout    time.Duration `yaml:"per_rule_timeout"`
	OverallTimeout    time.Duration `yaml:"overall_timeout"`
	MinFuzzyThreshold float64       `yaml:"min_fuzzy_threshold"`
	Workers           int           `yaml:"workers"`
}

// DefaultOptions returns the stock request bounds.
func DefaultOptions() Options {
	return Options{
		MaxResults:        10,
		PerRuleTimeout:    50 * time.Millisecond,
		OverallTimeout:    100 * time.Millisecond,
		MinFuzzyThreshold: fuzzy.DefaultThreshold,
		Workers:           runtime.NumCPU(),
	}
}

// WithDefaults fills every zero or out-of-range field from DefaultOptions.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.MaxResults <= 0 {
		o.MaxResults = d.MaxResults
	}
	if o.PerRuleTimeout <= 0 {
		o.PerRuleTimeout = d.PerRuleTimeout
	}
	if o.OverallTimeout <= 0 {
		o.OverallTimeout = d.OverallTimeout
	}
	if math.IsNaN(o.MinFuzzyThreshold) || o.MinFuzzyThreshold <= 0 || o.MinFuzzyThreshold > 1 {
		o.MinFuzzyThreshold = d.MinFuzzyThreshold
	}
	if o.Workers <= 0 {
		o.Workers = d.Workers
	}
	return o
}
