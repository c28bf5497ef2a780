package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vietddude/fixer/internal/core/config"
	"github.com/vietddude/fixer/internal/core/domain"
)

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with a config path that does not exist,
// so the defaults apply.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
	})

	cfg := filepath.Join(t.TempDir(), "missing.yaml")
	rootCmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCorrect_PrintsBestCorrection(t *testing.T) {
	stdout, _, err := execute(t, "",
		"correct",
		"--command", "git branch -d feature",
		"--exit-code", "1",
		"--stderr", "error: The branch 'feature' is not fully merged.",
		"--cwd", t.TempDir(),
	)
	if err != nil {
		t.Fatalf("correct failed: %v", err)
	}
	if stdout != "git branch -D feature\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestCorrect_PositionalCommandAndOutput(t *testing.T) {
	stdout, _, err := execute(t, "",
		"correct", "--all", "--cwd", t.TempDir(),
		"--output", "error: The branch 'feature' is not fully merged.",
		"git", "branch", "-d", "feature",
	)
	if err != nil {
		t.Fatalf("correct failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) == 0 || lines[0] != "git branch -D feature" {
		t.Errorf("unexpected output: %q", stdout)
	}
}

func TestCorrect_DashArgumentsBelongToCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"positional", []string{"git", "branch", "-d", "feature"}},
		{"after separator", []string{"--", "git", "branch", "-d", "feature"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{
				"correct", "--cwd", t.TempDir(),
				"--stderr", "error: The branch 'feature' is not fully merged.",
			}, tt.args...)
			stdout, _, err := execute(t, "", args...)
			if err != nil {
				t.Fatalf("correct failed: %v", err)
			}
			if stdout != "git branch -D feature\n" {
				t.Errorf("stdout = %q", stdout)
			}
		})
	}
}

func TestCorrect_NothingFound(t *testing.T) {
	stdout, stderr, err := execute(t, "",
		"correct", "--command", "echo hello", "--stderr", "something odd", "--cwd", t.TempDir(),
	)
	if !errors.Is(err, errSilent) {
		t.Fatalf("expected silent failure, got %v", err)
	}
	if stdout != "" {
		t.Errorf("stdout should be empty, got %q", stdout)
	}
	if !strings.Contains(stderr, "no correction found") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestCorrect_EmptyCommand(t *testing.T) {
	_, _, err := execute(t, "", "correct", "--command", "   ")
	if !errors.Is(err, domain.ErrEmptyCommand) {
		t.Errorf("expected ErrEmptyCommand, got %v", err)
	}
}

func TestRules_ListsRegistry(t *testing.T) {
	stdout, _, err := execute(t, "", "rules")
	if err != nil {
		t.Fatalf("rules failed: %v", err)
	}
	for _, want := range []string{"ID", "PRIORITY", "git_branch_delete", "command_not_found", "composite"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestDiagnostics_RequiresStore(t *testing.T) {
	_, _, err := execute(t, "", "diagnostics")
	if !errors.Is(err, errNoStore) {
		t.Errorf("expected errNoStore, got %v", err)
	}
}

func TestConfig_PrintAndWrite(t *testing.T) {
	stdout, _, err := execute(t, "", "config")
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if stdout != config.Example() {
		t.Error("config should print the example configuration")
	}

	path := filepath.Join(t.TempDir(), "fixer", "config.yaml")
	resetFlags(rootCmd)
	rootCmd.SetArgs([]string{"--config", path, "config", "--write"})
	rootCmd.SetErr(&bytes.Buffer{})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("config --write failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if _, err := config.Parse(data); err != nil {
		t.Errorf("written config does not parse: %v", err)
	}

	resetFlags(rootCmd)
	rootCmd.SetArgs([]string{"--config", path, "config", "--write"})
	if err := rootCmd.Execute(); err == nil {
		t.Error("expected error when the file already exists")
	}
	rootCmd.SetErr(nil)
}

func TestPrompt(t *testing.T) {
	corrections := []domain.Correction{
		{Command: "git status"},
		{Command: "git stash"},
		{Command: "git stage"},
	}

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"enter picks first", "\n", "git status", false},
		{"number", "2\n", "git stash", false},
		{"retry after invalid", "9\nabc\n3\n", "git stage", false},
		{"abort", "q\n", "", true},
		{"eof", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w bytes.Buffer
			got, err := prompt(strings.NewReader(tt.input), &w, corrections)
			if tt.wantErr {
				if !errors.Is(err, errSilent) {
					t.Errorf("expected silent error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("prompt failed: %v", err)
			}
			if got.Command != tt.want {
				t.Errorf("got %q, want %q", got.Command, tt.want)
			}
			if !strings.Contains(w.String(), " 1) git status") {
				t.Errorf("menu not printed: %q", w.String())
			}
		})
	}
}

func TestEnviron(t *testing.T) {
	env := environ([]string{"PATH=/bin:/usr/bin", "EMPTY=", "A=b=c", "=bad", "junk"})
	want := map[string]string{"PATH": "/bin:/usr/bin", "EMPTY": "", "A": "b=c"}
	if len(env) != len(want) {
		t.Fatalf("got %v, want %v", env, want)
	}
	for k, v := range want {
		if env[k] != v {
			t.Errorf("env[%s] = %q, want %q", k, env[k], v)
		}
	}
}

func TestJoinOutput(t *testing.T) {
	tests := []struct{ a, b, want string }{
		{"", "", ""},
		{"x", "", "x"},
		{"", "y", "y"},
		{"x", "y", "x\ny"},
	}
	for _, tt := range tests {
		if got := joinOutput(tt.a, tt.b); got != tt.want {
			t.Errorf("joinOutput(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}
