// Package rules contains the built-in rule packs.
package rules

import (
	"github.com/vietddude/fixer/internal/probe"
	"github.com/vietddude/fixer/internal/rule"
)

// DefaultPriority is used by rules that do not set one. Lower wins.
const DefaultPriority = 1000

// Builtin returns every built-in rule in registration order.
func Builtin(p probe.Prober) []rule.Rule {
	var out []rule.Rule
	out = append(out, Git()...)
	out = append(out, Filesystem(p)...)
	out = append(out, Permissions(p)...)
	out = append(out, PackageManagers()...)
	out = append(out, Shell(p)...)
	return out
}

// Load registers the built-in rules into reg.
func Load(reg *rule.Registry, p probe.Prober) error {
	return reg.Register(Builtin(p)...)
}

// The built-in definitions are static, so a constructor error is a
// programming mistake caught by the package tests.
func must[T rule.Rule](r T, err error) rule.Rule {
	if err != nil {
		panic(err)
	}
	return r
}
