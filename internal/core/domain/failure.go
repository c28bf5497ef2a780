package domain

import (
	"path/filepath"
	"strings"
)

// Invocation is the raw capture handed over by the shell integration.
type Invocation struct {
	Command    string            `json:"command"`
	ExitCode   int               `json:"exit_code"`
	Stdout     string            `json:"stdout"`
	Stderr     string            `json:"stderr"`
	WorkingDir string            `json:"cwd"`
	Env        map[string]string `json:"env,omitempty"`
}

// Validate checks that the invocation can be turned into a FailureContext.
func (i Invocation) Validate() error {
	if strings.TrimSpace(i.Command) == "" {
		return ErrEmptyCommand
	}
	return nil
}

// FailureContext is an immutable snapshot of one failed invocation.
// It is shared read-only by every rule evaluated for a request.
type FailureContext struct {
	rawCommand string
	exitCode   int
	stdout     string
	stderr     string
	workingDir string
	env        map[string]string
	parts      []string
}

// NewFailureContext validates the invocation and freezes it.
func NewFailureContext(inv Invocation) (*FailureContext, error) {
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	env := make(map[string]string, len(inv.Env))
	for k, v := range inv.Env {
		env[k] = v
	}

	return &FailureContext{
		rawCommand: inv.Command,
		exitCode:   inv.ExitCode,
		stdout:     inv.Stdout,
		stderr:     inv.Stderr,
		workingDir: inv.WorkingDir,
		env:        env,
		parts:      strings.Fields(inv.Command),
	}, nil
}

// RawCommand returns the exact text the user typed.
func (f *FailureContext) RawCommand() string { return f.rawCommand }

// ExitCode returns the exit status of the failed command.
func (f *FailureContext) ExitCode() int { return f.exitCode }

// Succeeded reports whether the command actually exited with 0.
func (f *FailureContext) Succeeded() bool { return f.exitCode == 0 }

func (f *FailureContext) Stdout() string { return f.stdout }

func (f *FailureContext) Stderr() string { return f.stderr }

// Output returns stdout and stderr joined by a newline.
func (f *FailureContext) Output() string {
	switch {
	case f.stdout == "":
		return f.stderr
	case f.stderr == "":
		return f.stdout
	default:
		return f.stdout + "\n" + f.stderr
	}
}

// HasOutput reports whether anything was captured on stdout or stderr.
func (f *FailureContext) HasOutput() bool {
	return strings.TrimSpace(f.stdout) != "" || strings.TrimSpace(f.stderr) != ""
}

func (f *FailureContext) WorkingDirectory() string { return f.workingDir }

// Env looks up a variable from the environment snapshot.
func (f *FailureContext) Env(key string) (string, bool) {
	v, ok := f.env[key]
	return v, ok
}

// Shell returns the basename of $SHELL, or "" when it was not captured.
func (f *FailureContext) Shell() string {
	sh, ok := f.env["SHELL"]
	if !ok || sh == "" {
		return ""
	}
	return filepath.Base(sh)
}

// Parts returns the whitespace-split command. The slice is a copy.
func (f *FailureContext) Parts() []string {
	out := make([]string, len(f.parts))
	copy(out, f.parts)
	return out
}

// Program returns the first word of the command.
func (f *FailureContext) Program() string {
	if len(f.parts) == 0 {
		return ""
	}
	return f.parts[0]
}

// Resolve turns a possibly relative path into an absolute one using the
// captured working directory.
func (f *FailureContext) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || f.workingDir == "" {
		return path
	}
	return filepath.Join(f.workingDir, path)
}
