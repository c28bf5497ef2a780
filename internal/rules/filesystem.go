package rules

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/vietddude/fixer/internal/core/domain"
	"github.com/vietddude/fixer/internal/probe"
	"github.com/vietddude/fixer/internal/rule"
)

const noSuchFile = "No such file or directory"

// Filesystem returns the filesystem rule pack.
func Filesystem(p probe.Prober) []rule.Rule {
	return []rule.Rule{
		must(rule.NewComposite(rule.CompositeSpec{
			ID:             "mkdir_parents",
			Priority:       100,
			RequiresOutput: true,
			Match: func(fc *domain.FailureContext) bool {
				return fc.Program() == "mkdir" && strings.Contains(fc.Output(), noSuchFile) && !hasFlag(fc, "-p", "--parents")
			},
			Guard: func(ctx context.Context, fc *domain.FailureContext) (bool, error) {
				for _, arg := range operands(fc) {
					info, err := p.Stat(ctx, fc.Resolve(filepath.Dir(arg)))
					if err != nil {
						return false, err
					}
					if !info.Exists {
						return true, nil
					}
				}
				return false, nil
			},
			Build: func(_ context.Context, fc *domain.FailureContext) ([]string, error) {
				return []string{"mkdir -p " + strings.Join(fc.Parts()[1:], " ")}, nil
			},
		})),
		must(rule.NewLiteral(rule.LiteralSpec{
			ID:             "rm_recursive",
			Priority:       200,
			CommandPrefix:  "rm ",
			OutputContains: "Is a directory",
			Old:            "rm ",
			New:            "rm -r ",
		})),
		must(rule.NewRegex(rule.RegexSpec{
			ID:         "cp_recursive",
			Priority:   300,
			Field:      rule.FieldCommand,
			Pattern:    `^\s*cp (.+?)\s*$`,
			Conditions: []rule.Condition{{Field: rule.FieldOutput, Pattern: `(?i)is a directory|-r not specified`}},
			Template:   "cp -r $1",
		})),
		must(rule.NewComposite(rule.CompositeSpec{
			ID:             "mv_create_target",
			Priority:       400,
			RequiresOutput: true,
			Match: func(fc *domain.FailureContext) bool {
				return fc.Program() == "mv" && len(operands(fc)) >= 2 && strings.Contains(fc.Output(), noSuchFile)
			},
			Guard: func(ctx context.Context, fc *domain.FailureContext) (bool, error) {
				args := operands(fc)
				src, err := p.Stat(ctx, fc.Resolve(args[0]))
				if err != nil || !src.Exists {
					return false, err
				}
				dir, err := p.Stat(ctx, fc.Resolve(targetDir(args[len(args)-1])))
				if err != nil {
					return false, err
				}
				return !dir.Exists, nil
			},
			Build: func(_ context.Context, fc *domain.FailureContext) ([]string, error) {
				args := operands(fc)
				return []string{"mkdir -p " + targetDir(args[len(args)-1]) + " && " + fc.RawCommand()}, nil
			},
		})),
		must(rule.NewFuzzy(rule.FuzzySpec{
			ID:            "cd_typo",
			Priority:      150,
			CommandPrefix: "cd ",
			OutputMarkers: []string{noSuchFile, "no such file or directory"},
			Candidates:    rule.SiblingDirs(p),
			PathMode:      true,
		})),
		must(rule.NewComposite(rule.CompositeSpec{
			ID:             "cd_file",
			Priority:       250,
			RequiresOutput: true,
			Match: func(fc *domain.FailureContext) bool {
				return fc.Program() == "cd" && len(fc.Parts()) == 2 && strings.Contains(strings.ToLower(fc.Output()), "not a directory")
			},
			Guard: func(ctx context.Context, fc *domain.FailureContext) (bool, error) {
				info, err := p.Stat(ctx, fc.Resolve(fc.Parts()[1]))
				if err != nil {
					return false, err
				}
				return info.Exists && !info.IsDir, nil
			},
			Build: func(_ context.Context, fc *domain.FailureContext) ([]string, error) {
				dir := filepath.Dir(fc.Parts()[1])
				if dir == "." {
					return nil, nil
				}
				return []string{"cd " + dir}, nil
			},
		})),
	}
}

// operands returns the non-flag arguments.
func operands(fc *domain.FailureContext) []string {
	var out []string
	for _, a := range fc.Parts()[1:] {
		if !strings.HasPrefix(a, "-") {
			out = append(out, a)
		}
	}
	return out
}

func hasFlag(fc *domain.FailureContext, flags ...string) bool {
	for _, a := range fc.Parts()[1:] {
		for _, f := range flags {
			if a == f {
				return true
			}
		}
	}
	return false
}

// targetDir is the directory a mv target should live in. A trailing slash
// names the directory itself.
func targetDir(target string) string {
	if strings.HasSuffix(target, "/") {
		return filepath.Clean(target)
	}
	return filepath.Dir(target)
}
