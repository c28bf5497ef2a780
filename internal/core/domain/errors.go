package domain

import "fmt"

// CodedError is the error type shared by the corrector core.
// Sentinels are compared with errors.Is; wrapping keeps the code.
type CodedError struct {
	Code    int
	Message string
}

func (e *CodedError) Error() string {
	return fmt.Sprintf("fixer error %d: %s", e.Code, e.Message)
}

// Wrap returns an error that carries detail and still matches e with errors.Is.
func (e *CodedError) Wrap(detail string) error {
	return fmt.Errorf("%w: %s", e, detail)
}

// ---- Registry / configuration errors (fatal at startup) ----

var (
	ErrDuplicateRuleID = &CodedError{Code: 1001, Message: "duplicate rule id"}
	ErrRegistryFrozen  = &CodedError{Code: 1002, Message: "rule registry is frozen"}
	ErrUnknownRule     = &CodedError{Code: 1003, Message: "unknown rule id"}
	ErrInvalidRule     = &CodedError{Code: 1004, Message: "invalid rule definition"}
	ErrConfigInvalid   = &CodedError{Code: 1005, Message: "invalid configuration"}
)

// ---- Request errors ----

var (
	ErrEmptyCommand = &CodedError{Code: 2001, Message: "command is empty"}
)

// ---- Per-rule faults (contained, never returned by Correct) ----

var (
	ErrRuleEvaluation = &CodedError{Code: 3001, Message: "rule evaluation failed"}
	ErrRuleTimeout    = &CodedError{Code: 3002, Message: "rule exceeded its deadline"}
	ErrProbeTimeout   = &CodedError{Code: 3003, Message: "external probe timed out"}
)
