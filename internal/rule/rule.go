// Package rule defines the matching strategies the engine evaluates against a
// failed command, and the registry that holds them.
package rule

import (
	"context"
	"strings"

	"github.com/vietddude/fixer/internal/core/domain"
)

// Rule is a named matching strategy.
//
// Matches is a cheap pre-check; Generate is only called when it returns true
// and may still return no corrections. Neither may mutate the FailureContext.
// Generate must honor ctx for any blocking work.
type Rule interface {
	ID() string
	Kind() Kind
	Priority() int
	Enabled() bool
	Matches(fc *domain.FailureContext) bool
	Generate(ctx context.Context, fc *domain.FailureContext) ([]domain.Correction, error)
}

// OutputRequirer is implemented by rules that only make sense when the failed
// command printed something.
type OutputRequirer interface {
	RequiresOutput() bool
}

// Kind names the matching strategy of a rule.
type Kind string

const (
	KindLiteral   Kind = "literal"
	KindRegex     Kind = "regex"
	KindFuzzy     Kind = "fuzzy"
	KindComposite Kind = "composite"
)

// Meta carries the identity shared by every built-in rule.
type Meta struct {
	id             string
	priority       int
	disabled       bool
	requiresOutput bool
}

func newMeta(id string, priority int, disabled, requiresOutput bool) Meta {
	return Meta{id: id, priority: priority, disabled: disabled, requiresOutput: requiresOutput}
}

func (m Meta) ID() string           { return m.id }
func (m Meta) Priority() int        { return m.priority }
func (m Meta) Enabled() bool        { return !m.disabled }
func (m Meta) RequiresOutput() bool { return m.requiresOutput }

func (m Meta) correction(command string, confidence float64) domain.Correction {
	return domain.Correction{
		Command:    command,
		RuleID:     m.id,
		Confidence: confidence,
		Priority:   m.priority,
	}
}

// Field selects which part of the failure context a pattern is applied to.
type Field int

const (
	FieldCommand Field = iota
	FieldStdout
	FieldStderr
	FieldOutput // stdout and stderr
)

func (f Field) String() string {
	switch f {
	case FieldCommand:
		return "command"
	case FieldStdout:
		return "stdout"
	case FieldStderr:
		return "stderr"
	case FieldOutput:
		return "output"
	default:
		return "unknown"
	}
}

// From extracts the field's text.
func (f Field) From(fc *domain.FailureContext) string {
	switch f {
	case FieldCommand:
		return fc.RawCommand()
	case FieldStdout:
		return fc.Stdout()
	case FieldStderr:
		return fc.Stderr()
	default:
		return fc.Output()
	}
}

func invalid(id, format string) error {
	if id == "" {
		return domain.ErrInvalidRule.Wrap(format)
	}
	return domain.ErrInvalidRule.Wrap(id + ": " + format)
}

// replaceField swaps one whitespace-separated word of cmd. When no word is an
// exact match the first (or last) substring occurrence is replaced instead.
func replaceField(cmd, old, repl string, last bool) (string, bool) {
	if old == "" {
		return cmd, false
	}

	parts := strings.Fields(cmd)
	idx := -1
	for i, p := range parts {
		if p == old {
			idx = i
			if !last {
				break
			}
		}
	}
	if idx >= 0 {
		parts[idx] = repl
		return strings.Join(parts, " "), true
	}

	var at int
	if last {
		at = strings.LastIndex(cmd, old)
	} else {
		at = strings.Index(cmd, old)
	}
	if at < 0 {
		return cmd, false
	}
	return cmd[:at] + repl + cmd[at+len(old):], true
}

// Replace swaps the first word of cmd equal to old, falling back to the first
// substring occurrence.
func Replace(cmd, old, repl string) (string, bool) {
	return replaceField(cmd, old, repl, false)
}

// sameCommand reports whether a rewrite left the command effectively unchanged.
func sameCommand(a, b string) bool {
	return domain.NormalizeCommand(a) == domain.NormalizeCommand(b)
}
