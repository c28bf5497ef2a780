package rule

import (
	"context"
	"strings"

	"github.com/vietddude/fixer/internal/core/domain"
)

// GuardFunc is a bounded external check run before a composite rule emits.
type GuardFunc func(ctx context.Context, fc *domain.FailureContext) (bool, error)

// BuildFunc produces corrected command lines for a composite rule.
type BuildFunc func(ctx context.Context, fc *domain.FailureContext) ([]string, error)

// CompositeSpec combines a precheck, an optional probe and child rules or a
// build step.
type CompositeSpec struct {
	ID             string
	Priority       int
	Disabled       bool
	RequiresOutput bool

	// Match is the cheap precheck. When nil the rule matches if any child does.
	Match    func(fc *domain.FailureContext) bool
	Guard    GuardFunc
	Children []Rule
	Build    BuildFunc

	// Confidence of the corrections produced by Build; 0 means 0.95.
	Confidence float64
}

// Composite runs multi-step logic: precheck, probe, then generation.
type Composite struct {
	Meta
	spec CompositeSpec
}

// NewComposite validates spec and builds the rule.
func NewComposite(spec CompositeSpec) (*Composite, error) {
	if spec.ID == "" {
		return nil, invalid("", "composite rule needs an id")
	}
	if spec.Match == nil && len(spec.Children) == 0 {
		return nil, invalid(spec.ID, "composite rule needs a precheck or children")
	}
	if spec.Build == nil && len(spec.Children) == 0 {
		return nil, invalid(spec.ID, "composite rule needs a build step or children")
	}
	for _, c := range spec.Children {
		if c == nil {
			return nil, invalid(spec.ID, "nil child rule")
		}
	}
	if spec.Confidence <= 0 {
		spec.Confidence = domain.ConfidenceComposite
	}

	return &Composite{
		Meta: newMeta(spec.ID, spec.Priority, spec.Disabled, spec.RequiresOutput),
		spec: spec,
	}, nil
}

func (r *Composite) Kind() Kind { return KindComposite }

func (r *Composite) Matches(fc *domain.FailureContext) bool {
	if r.spec.Match != nil {
		return r.spec.Match(fc)
	}
	for _, c := range r.spec.Children {
		if c.Matches(fc) {
			return true
		}
	}
	return false
}

func (r *Composite) Generate(ctx context.Context, fc *domain.FailureContext) ([]domain.Correction, error) {
	if r.spec.Guard != nil {
		ok, err := r.spec.Guard(ctx, fc)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
	}

	var out []domain.Correction
	for _, child := range r.spec.Children {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if !child.Matches(fc) {
			continue
		}
		cs, err := child.Generate(ctx, fc)
		if err != nil {
			return out, err
		}
		for _, c := range cs {
			c.RuleID = r.ID()
			c.Priority = r.Priority()
			out = append(out, c)
		}
	}

	if r.spec.Build == nil {
		return out, nil
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	commands, err := r.spec.Build(ctx, fc)
	if err != nil {
		return out, err
	}
	cmd := strings.TrimSpace(fc.RawCommand())
	for _, c := range commands {
		c = strings.TrimSpace(c)
		if c == "" || sameCommand(c, cmd) {
			continue
		}
		out = append(out, r.correction(c, r.spec.Confidence))
	}
	return out, nil
}
