package domain

import "time"

// RuleStatus is the outcome of evaluating one rule for one request.
type RuleStatus string

const (
	RuleStatusUnmatched RuleStatus = "unmatched"
	RuleStatusMatched   RuleStatus = "matched"
	RuleStatusSkipped   RuleStatus = "skipped"
	RuleStatusFailed    RuleStatus = "failed"
	RuleStatusTimeout   RuleStatus = "timeout"
	RuleStatusCanceled  RuleStatus = "canceled"
)

// RuleReport records how a single rule behaved during an evaluation pass.
type RuleReport struct {
	RuleID      string        `json:"rule_id"`
	Index       int           `json:"index"`
	Status      RuleStatus    `json:"status"`
	Corrections int           `json:"corrections"`
	Duration    time.Duration `json:"duration"`
	Err         string        `json:"error,omitempty"`
}

// Overran reports whether the rule did not finish within its deadline.
func (r RuleReport) Overran() bool {
	return r.Status == RuleStatusTimeout || r.Status == RuleStatusCanceled
}

// Diagnostic is the persisted trace of one correction request.
type Diagnostic struct {
	RequestID   string        `json:"request_id"`
	Command     string        `json:"command"`
	ExitCode    int           `json:"exit_code"`
	CreatedAt   int64         `json:"created_at"`
	Elapsed     time.Duration `json:"elapsed"`
	Deadline    bool          `json:"deadline_exceeded"`
	Reports     []RuleReport  `json:"reports"`
	Corrections []Correction  `json:"corrections"`
}
