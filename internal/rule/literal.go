package rule

import (
	"context"
	"strings"

	"github.com/vietddude/fixer/internal/core/domain"
)

// LiteralSpec describes an exact substring rule with a fixed replacement.
// Every condition that is set must hold.
type LiteralSpec struct {
	ID       string
	Priority int
	Disabled bool

	CommandPrefix   string
	CommandContains string
	OutputContains  string // checked against stderr and stdout

	// The first Old in the raw command is replaced by New. An empty Old
	// prepends New.
	Old string
	New string
}

// Literal is the cheapest and most certain strategy.
type Literal struct {
	Meta
	spec LiteralSpec
}

// NewLiteral validates spec and builds the rule.
func NewLiteral(spec LiteralSpec) (*Literal, error) {
	if spec.ID == "" {
		return nil, invalid("", "literal rule needs an id")
	}
	if spec.CommandPrefix == "" && spec.CommandContains == "" && spec.OutputContains == "" {
		return nil, invalid(spec.ID, "literal rule needs at least one condition")
	}
	if spec.Old == "" && spec.New == "" {
		return nil, invalid(spec.ID, "literal rule needs a replacement")
	}

	return &Literal{
		Meta: newMeta(spec.ID, spec.Priority, spec.Disabled, spec.OutputContains != ""),
		spec: spec,
	}, nil
}

func (r *Literal) Kind() Kind { return KindLiteral }

func (r *Literal) Matches(fc *domain.FailureContext) bool {
	cmd := fc.RawCommand()
	if r.spec.CommandPrefix != "" && !strings.HasPrefix(strings.TrimSpace(cmd), r.spec.CommandPrefix) {
		return false
	}
	if r.spec.CommandContains != "" && !strings.Contains(cmd, r.spec.CommandContains) {
		return false
	}
	if r.spec.OutputContains != "" &&
		!strings.Contains(fc.Stderr(), r.spec.OutputContains) &&
		!strings.Contains(fc.Stdout(), r.spec.OutputContains) {
		return false
	}
	return true
}

func (r *Literal) Generate(_ context.Context, fc *domain.FailureContext) ([]domain.Correction, error) {
	cmd := strings.TrimSpace(fc.RawCommand())

	var fixed string
	switch {
	case r.spec.Old == "":
		fixed = r.spec.New + cmd
	case strings.Contains(cmd, r.spec.Old):
		fixed = strings.Replace(cmd, r.spec.Old, r.spec.New, 1)
	default:
		return nil, nil
	}

	if sameCommand(fixed, cmd) {
		return nil, nil
	}
	return []domain.Correction{r.correction(fixed, domain.ConfidenceLiteral)}, nil
}
