package rule

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/vietddude/fixer/internal/core/domain"
	"github.com/vietddude/fixer/internal/fuzzy"
	"github.com/vietddude/fixer/internal/probe"
)

// CandidateSource supplies the strings a fuzzy rule compares the offending
// token against. In path mode token is the basename and dir the directory
// part the candidates should come from.
type CandidateSource func(ctx context.Context, fc *domain.FailureContext, dir, token string) ([]string, error)

// ExtractFunc pulls the offending token out of the failure.
type ExtractFunc func(fc *domain.FailureContext) (string, bool)

// FuzzySpec describes an approximate-match rule.
type FuzzySpec struct {
	ID       string
	Priority int
	Disabled bool

	// Preconditions; when both are set both must hold.
	CommandPrefix string
	OutputMarkers []string // any of them

	Extract    ExtractFunc // defaults to LastArgument
	Candidates CandidateSource
	// PathMode corrects only the last path element of the token.
	PathMode bool
	// Threshold raises the request-level minimum similarity for this rule.
	Threshold float64
	// Limit caps how many corrections the rule emits; 0 means 3.
	Limit int
}

// Fuzzy corrects a token to the closest known candidates.
type Fuzzy struct {
	Meta
	spec FuzzySpec
}

// NewFuzzy validates spec and builds the rule.
func NewFuzzy(spec FuzzySpec) (*Fuzzy, error) {
	if spec.ID == "" {
		return nil, invalid("", "fuzzy rule needs an id")
	}
	if spec.CommandPrefix == "" && len(spec.OutputMarkers) == 0 {
		return nil, invalid(spec.ID, "fuzzy rule needs a precondition")
	}
	if spec.Candidates == nil {
		return nil, invalid(spec.ID, "fuzzy rule needs a candidate source")
	}
	if spec.Extract == nil {
		spec.Extract = LastArgument
	}
	if spec.Limit <= 0 {
		spec.Limit = 3
	}

	return &Fuzzy{
		Meta: newMeta(spec.ID, spec.Priority, spec.Disabled, len(spec.OutputMarkers) > 0),
		spec: spec,
	}, nil
}

func (r *Fuzzy) Kind() Kind { return KindFuzzy }

func (r *Fuzzy) Matches(fc *domain.FailureContext) bool {
	if r.spec.CommandPrefix != "" && !strings.HasPrefix(strings.TrimSpace(fc.RawCommand()), r.spec.CommandPrefix) {
		return false
	}
	if len(r.spec.OutputMarkers) == 0 {
		return true
	}
	out := fc.Output()
	for _, m := range r.spec.OutputMarkers {
		if strings.Contains(out, m) {
			return true
		}
	}
	return false
}

func (r *Fuzzy) Generate(ctx context.Context, fc *domain.FailureContext) ([]domain.Correction, error) {
	token, ok := r.spec.Extract(fc)
	if !ok || token == "" {
		return nil, nil
	}

	prefix, query := "", token
	if r.spec.PathMode {
		prefix, query = splitPath(token)
		if query == "" {
			return nil, nil
		}
	}

	candidates, err := r.spec.Candidates(ctx, fc, prefix, query)
	if err != nil {
		return nil, err
	}

	threshold := fuzzy.ThresholdFrom(ctx, fuzzy.DefaultThreshold)
	if r.spec.Threshold > threshold {
		threshold = r.spec.Threshold
	}

	cmd := strings.TrimSpace(fc.RawCommand())
	var out []domain.Correction
	for _, m := range fuzzy.Rank(query, candidates, threshold) {
		if m.Candidate == query {
			continue
		}
		fixed, ok := replaceField(cmd, token, prefix+m.Candidate, true)
		if !ok || sameCommand(fixed, cmd) {
			continue
		}
		out = append(out, r.correction(fixed, ScaleSimilarity(m.Similarity)))
		if len(out) == r.spec.Limit {
			break
		}
	}
	return out, nil
}

// ScaleSimilarity maps a similarity in [0,1] onto the fuzzy confidence band.
func ScaleSimilarity(s float64) float64 {
	s = domain.ClampConfidence(s)
	return domain.ConfidenceFuzzyMin + s*(domain.ConfidenceFuzzyMax-domain.ConfidenceFuzzyMin)
}

// LastArgument returns the final word of the command, if it has arguments.
func LastArgument(fc *domain.FailureContext) (string, bool) {
	parts := fc.Parts()
	if len(parts) < 2 {
		return "", false
	}
	return parts[len(parts)-1], true
}

// ArgumentAt returns an ExtractFunc for the word at position i.
func ArgumentAt(i int) ExtractFunc {
	return func(fc *domain.FailureContext) (string, bool) {
		parts := fc.Parts()
		if i < 0 || i >= len(parts) {
			return "", false
		}
		return parts[i], true
	}
}

// splitPath separates "dir/" from the last element, ignoring a trailing slash.
func splitPath(token string) (dir, base string) {
	trimmed := token
	if len(trimmed) > 1 {
		trimmed = strings.TrimRight(trimmed, "/")
	}
	i := strings.LastIndex(trimmed, "/")
	if i < 0 {
		return "", trimmed
	}
	return trimmed[:i+1], trimmed[i+1:]
}

// Static always offers the same candidates.
func Static(candidates ...string) CandidateSource {
	list := append([]string(nil), candidates...)
	return func(context.Context, *domain.FailureContext, string, string) ([]string, error) {
		return list, nil
	}
}

// SiblingDirs lists the directories next to the mistyped path element.
func SiblingDirs(p probe.Prober) CandidateSource {
	return func(ctx context.Context, fc *domain.FailureContext, dir, token string) ([]string, error) {
		base := dir
		if base == "" {
			base = "."
		}
		entries, err := p.ListDir(ctx, fc.Resolve(filepath.Clean(base)))
		if err != nil {
			return nil, err
		}
		return probe.Visible(probe.Names(entries, true), token), nil
	}
}

// PathCommands lists executables on the captured $PATH.
func PathCommands(p probe.Prober) CandidateSource {
	return func(ctx context.Context, fc *domain.FailureContext, _, _ string) ([]string, error) {
		path, ok := fc.Env("PATH")
		if !ok || path == "" {
			return nil, nil
		}
		return p.Commands(ctx, path)
	}
}
