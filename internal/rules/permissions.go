package rules

import (
	"context"
	"strings"

	"github.com/vietddude/fixer/internal/core/domain"
	"github.com/vietddude/fixer/internal/probe"
	"github.com/vietddude/fixer/internal/rule"
)

// Permissions returns the permission rule pack.
func Permissions(p probe.Prober) []rule.Rule {
	return []rule.Rule{
		must(rule.NewComposite(rule.CompositeSpec{
			ID:             "sudo_permission_denied",
			Priority:       100,
			RequiresOutput: true,
			Match: func(fc *domain.FailureContext) bool {
				return fc.Program() != "sudo" && strings.Contains(strings.ToLower(fc.Output()), "permission denied")
			},
			Build: func(_ context.Context, fc *domain.FailureContext) ([]string, error) {
				return []string{"sudo " + strings.TrimSpace(fc.RawCommand())}, nil
			},
		})),
		must(rule.NewLiteral(rule.LiteralSpec{
			ID:             "sudo_apt_lock",
			Priority:       200,
			CommandPrefix:  "apt",
			OutputContains: "Could not open lock file",
			New:            "sudo ",
		})),
		must(rule.NewComposite(rule.CompositeSpec{
			ID:             "chmod_execute",
			Priority:       300,
			RequiresOutput: true,
			Match: func(fc *domain.FailureContext) bool {
				return strings.Contains(fc.Program(), "/") && strings.Contains(fc.Output(), "Permission denied")
			},
			Guard: func(ctx context.Context, fc *domain.FailureContext) (bool, error) {
				info, err := p.Stat(ctx, fc.Resolve(fc.Program()))
				if err != nil {
					return false, err
				}
				return info.Exists && !info.IsDir && !info.Executable, nil
			},
			Build: func(_ context.Context, fc *domain.FailureContext) ([]string, error) {
				return []string{"chmod +x " + fc.Program() + " && " + strings.TrimSpace(fc.RawCommand())}, nil
			},
		})),
		must(rule.NewLiteral(rule.LiteralSpec{
			ID:             "chmod_recursive",
			Priority:       400,
			CommandPrefix:  "chmod ",
			OutputContains: "Operation not permitted",
			Old:            "chmod ",
			New:            "chmod -R ",
		})),
	}
}
