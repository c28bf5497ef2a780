package rule

import (
	"context"
	"regexp"
	"strings"

	"github.com/vietddude/fixer/internal/core/domain"
)

// CommandPlaceholder in a regex template is replaced by the raw command.
const CommandPlaceholder = "{{command}}"

// Condition is an extra pattern that must also be found for a regex rule to
// match.
type Condition struct {
	Field   Field
	Pattern string
}

// Substitution replaces the text captured by Group inside the raw command.
type Substitution struct {
	Group int
	With  string
}

// RewriteFunc builds corrections from the capture groups of the primary
// pattern. groups[0] is the whole match.
type RewriteFunc func(fc *domain.FailureContext, groups []string) []string

// RegexSpec describes a pattern rule. Exactly one of Template, Substitute or
// Rewrite produces the corrected command.
type RegexSpec struct {
	ID       string
	Priority int
	Disabled bool

	Field      Field
	Pattern    string
	Conditions []Condition

	// Template is expanded with regexp.Expand syntax ($1, ${name}) against
	// the primary match; CommandPlaceholder is then replaced by the raw command.
	Template   string
	Substitute *Substitution
	Rewrite    RewriteFunc
}

type compiledCondition struct {
	field Field
	re    *regexp.Regexp
}

// Regex matches a compiled pattern and substitutes its captures.
type Regex struct {
	Meta
	spec       RegexSpec
	re         *regexp.Regexp
	conditions []compiledCondition
}

// NewRegex compiles every pattern once; the rule never recompiles.
func NewRegex(spec RegexSpec) (*Regex, error) {
	if spec.ID == "" {
		return nil, invalid("", "regex rule needs an id")
	}

	producers := 0
	if spec.Template != "" {
		producers++
	}
	if spec.Substitute != nil {
		producers++
	}
	if spec.Rewrite != nil {
		producers++
	}
	if producers != 1 {
		return nil, invalid(spec.ID, "regex rule needs exactly one of template, substitute or rewrite")
	}

	if spec.Pattern == "" {
		return nil, invalid(spec.ID, "regex rule needs a pattern")
	}
	re, err := regexp.Compile(spec.Pattern)
	if err != nil {
		return nil, invalid(spec.ID, err.Error())
	}
	if spec.Substitute != nil && (spec.Substitute.Group < 1 || spec.Substitute.Group > re.NumSubexp()) {
		return nil, invalid(spec.ID, "substitution group out of range")
	}

	conds := make([]compiledCondition, 0, len(spec.Conditions))
	requiresOutput := spec.Field != FieldCommand
	for _, c := range spec.Conditions {
		cre, err := regexp.Compile(c.Pattern)
		if err != nil {
			return nil, invalid(spec.ID, err.Error())
		}
		if c.Field != FieldCommand {
			requiresOutput = true
		}
		conds = append(conds, compiledCondition{field: c.Field, re: cre})
	}

	return &Regex{
		Meta:       newMeta(spec.ID, spec.Priority, spec.Disabled, requiresOutput),
		spec:       spec,
		re:         re,
		conditions: conds,
	}, nil
}

func (r *Regex) Kind() Kind { return KindRegex }

func (r *Regex) Matches(fc *domain.FailureContext) bool {
	if !r.re.MatchString(r.spec.Field.From(fc)) {
		return false
	}
	for _, c := range r.conditions {
		if !c.re.MatchString(c.field.From(fc)) {
			return false
		}
	}
	return true
}

func (r *Regex) Generate(_ context.Context, fc *domain.FailureContext) ([]domain.Correction, error) {
	src := r.spec.Field.From(fc)
	loc := r.re.FindStringSubmatchIndex(src)
	if loc == nil {
		return nil, nil
	}

	cmd := strings.TrimSpace(fc.RawCommand())
	var commands []string

	switch {
	case r.spec.Template != "":
		expanded := string(r.re.ExpandString(nil, r.spec.Template, src, loc))
		commands = append(commands, strings.ReplaceAll(expanded, CommandPlaceholder, cmd))

	case r.spec.Substitute != nil:
		g := r.spec.Substitute.Group
		if loc[2*g] < 0 {
			return nil, nil
		}
		captured := src[loc[2*g]:loc[2*g+1]]
		if fixed, ok := replaceField(cmd, captured, r.spec.Substitute.With, false); ok {
			commands = append(commands, fixed)
		}

	default:
		commands = r.spec.Rewrite(fc, groups(src, loc))
	}

	out := make([]domain.Correction, 0, len(commands))
	for _, c := range commands {
		c = strings.TrimSpace(c)
		if c == "" || sameCommand(c, cmd) {
			continue
		}
		out = append(out, r.correction(c, domain.ConfidenceRegex))
	}
	return out, nil
}

func groups(src string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		if loc[2*i] >= 0 {
			out[i] = src[loc[2*i]:loc[2*i+1]]
		}
	}
	return out
}
