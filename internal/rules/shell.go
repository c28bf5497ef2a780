package rules

import (
	"github.com/vietddude/fixer/internal/probe"
	"github.com/vietddude/fixer/internal/rule"
)

// Shell returns rules for mistyped program names.
func Shell(p probe.Prober) []rule.Rule {
	return []rule.Rule{
		must(rule.NewFuzzy(rule.FuzzySpec{
			ID:            "command_not_found",
			Priority:      950,
			OutputMarkers: []string{"command not found", "not found:"},
			Extract:       rule.ArgumentAt(0),
			Candidates:    rule.PathCommands(p),
		})),
	}
}
