package rules

import "github.com/vietddude/fixer/internal/rule"

// PackageManagers returns the apt, pip and npm rule pack.
func PackageManagers() []rule.Rule {
	return []rule.Rule{
		must(rule.NewLiteral(rule.LiteralSpec{
			ID:             "apt_autoremove",
			Priority:       600,
			CommandPrefix:  "apt remove",
			OutputContains: "no longer required",
			Old:            "apt remove",
			New:            "apt autoremove",
		})),
		must(rule.NewLiteral(rule.LiteralSpec{
			ID:             "apt_cache_search",
			Priority:       500,
			CommandPrefix:  "apt-get search",
			OutputContains: "E: Invalid operation search",
			Old:            "apt-get search",
			New:            "apt-cache search",
		})),
		must(rule.NewLiteral(rule.LiteralSpec{
			ID:             "apt_install_builddeps",
			Priority:       700,
			CommandPrefix:  "apt install",
			OutputContains: "Unmet dependencies",
			Old:            "apt install",
			New:            "apt build-dep",
		})),
		must(rule.NewLiteral(rule.LiteralSpec{
			ID:              "pip_install_user",
			Priority:        300,
			CommandPrefix:   "pip",
			CommandContains: " install ",
			OutputContains:  "Consider using the `--user` option",
			Old:             " install ",
			New:             " install --user ",
		})),
		must(rule.NewRegex(rule.RegexSpec{
			ID:         "npm_missing_script",
			Priority:   500,
			Field:      rule.FieldOutput,
			Pattern:    `Did you mean (?:this|one of these)\?\s*\n(?:npm ERR!|npm error)?\s*(npm run(?:-script)? \S+)`,
			Conditions: []rule.Condition{{Field: rule.FieldOutput, Pattern: `Missing script:`}},
			Template:   "$1",
		})),
	}
}
