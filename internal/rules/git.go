package rules

import (
	"regexp"
	"strings"

	"github.com/vietddude/fixer/internal/core/domain"
	"github.com/vietddude/fixer/internal/fuzzy"
	"github.com/vietddude/fixer/internal/rule"
)

var gitSubcommands = []string{
	"add", "am", "archive", "bisect", "blame", "branch", "bundle", "checkout",
	"cherry-pick", "clean", "clone", "commit", "config", "describe", "diff",
	"fetch", "format-patch", "gc", "grep", "init", "log", "merge", "mv",
	"notes", "pull", "push", "rebase", "reflog", "remote", "reset", "restore",
	"revert", "rm", "shortlog", "show", "stash", "status", "submodule",
	"switch", "tag", "worktree",
}

var upstreamHint = regexp.MustCompile(`git push --set-upstream (\S+) (\S+)`)

// Git returns the git rule pack.
func Git() []rule.Rule {
	return []rule.Rule{
		must(rule.NewLiteral(rule.LiteralSpec{
			ID:             "git_branch_delete",
			Priority:       500,
			CommandPrefix:  "git branch -d",
			OutputContains: "is not fully merged",
			Old:            "branch -d",
			New:            "branch -D",
		})),
		must(rule.NewRegex(rule.RegexSpec{
			ID:         "git_checkout_new_branch",
			Priority:   DefaultPriority,
			Field:      rule.FieldCommand,
			Pattern:    `^git checkout ([\w./-]+)$`,
			Conditions: []rule.Condition{{Field: rule.FieldStderr, Pattern: `error: pathspec '[^']+' did not match`}},
			Template:   "git checkout -b $1",
		})),
		must(rule.NewLiteral(rule.LiteralSpec{
			ID:             "git_branch_all",
			Priority:       400,
			CommandPrefix:  "git branch",
			OutputContains: "fatal: bad revision",
			Old:            "git branch",
			New:            "git branch -a",
		})),
		must(rule.NewRegex(rule.RegexSpec{
			ID:         "git_push_set_upstream",
			Priority:   600,
			Field:      rule.FieldStderr,
			Pattern:    `fatal: The current branch (\S+) has no upstream branch`,
			Conditions: []rule.Condition{{Field: rule.FieldCommand, Pattern: `^git push\b`}},
			Rewrite:    setUpstream,
		})),
		must(rule.NewLiteral(rule.LiteralSpec{
			ID:             "git_pull_rebase",
			Priority:       500,
			CommandPrefix:  "git pull",
			OutputContains: "Please specify which branch you want to merge with",
			Old:            "git pull",
			New:            "git pull --rebase origin",
		})),
		must(rule.NewLiteral(rule.LiteralSpec{
			ID:             "git_push_force",
			Priority:       700,
			CommandPrefix:  "git push",
			OutputContains: "[rejected]",
			Old:            "git push",
			New:            "git push --force-with-lease",
		})),
		must(rule.NewLiteral(rule.LiteralSpec{
			ID:             "git_commit_add_all",
			Priority:       800,
			CommandPrefix:  "git commit",
			OutputContains: "no changes added to commit",
			Old:            "git commit",
			New:            "git add -A && git commit",
		})),
		must(rule.NewLiteral(rule.LiteralSpec{
			ID:             "git_commit_amend",
			Priority:       550,
			CommandPrefix:  "git commit",
			OutputContains: "nothing to commit",
			Old:            "git commit",
			New:            "git commit --amend --no-edit",
		})),
		must(rule.NewRegex(rule.RegexSpec{
			ID:         "git_not_a_command",
			Priority:   300,
			Field:      rule.FieldStderr,
			Pattern:    `git: '([^']+)' is not a git command`,
			Conditions: []rule.Condition{{Field: rule.FieldStderr, Pattern: `The most similar commands? (is|are)`}},
			Rewrite:    gitSuggestions,
		})),
		must(rule.NewRegex(rule.RegexSpec{
			ID:       "git_transposed_subcommand",
			Priority: 850,
			Field:    rule.FieldStderr,
			Pattern:  `git: '([^']+)' is not a git command`,
			Rewrite:  gitTransposed,
		})),
		must(rule.NewFuzzy(rule.FuzzySpec{
			ID:            "git_subcommand_typo",
			Priority:      900,
			CommandPrefix: "git ",
			OutputMarkers: []string{"is not a git command"},
			Extract:       rule.ArgumentAt(1),
			Candidates:    rule.Static(gitSubcommands...),
		})),
	}
}

// setUpstream prefers the exact command git printed.
func setUpstream(fc *domain.FailureContext, groups []string) []string {
	if m := upstreamHint.FindStringSubmatch(fc.Stderr()); m != nil {
		return []string{m[0]}
	}
	return []string{"git push --set-upstream origin " + groups[1]}
}

// gitTransposed fixes a subcommand with two swapped letters, which plain edit
// distance scores too low.
func gitTransposed(fc *domain.FailureContext, groups []string) []string {
	var out []string
	for _, sub := range gitSubcommands {
		if !fuzzy.Transposed(groups[1], sub) {
			continue
		}
		if fixed, ok := rule.Replace(fc.RawCommand(), groups[1], sub); ok {
			out = append(out, fixed)
		}
	}
	return out
}

// gitSuggestions substitutes every command listed after git's hint.
func gitSuggestions(fc *domain.FailureContext, groups []string) []string {
	stderr := fc.Stderr()
	i := strings.Index(stderr, "The most similar command")
	if i < 0 {
		return nil
	}

	lines := strings.Split(stderr[i:], "\n")
	var out []string
	for _, line := range lines[1:] {
		s := strings.TrimSpace(line)
		if s == "" {
			if len(out) > 0 {
				break
			}
			continue
		}
		if fixed, ok := rule.Replace(fc.RawCommand(), groups[1], s); ok {
			out = append(out, fixed)
		}
	}
	return out
}
