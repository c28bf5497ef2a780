package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vietddude/fixer/internal/control"
	"github.com/vietddude/fixer/internal/core/domain"
)

var correctFlags struct {
	command       string
	exitCode      int
	stdout        string
	stderr        string
	output        string
	cwd           string
	noInteraction bool
	all           bool
	maxResults    int
}

var correctCmd = &cobra.Command{
	Use:   "correct [command...]",
	Short: "Print a correction for a failed command",
	Long: `Correct evaluates every enabled rule against the failed command and prints
the best correction on stdout. With several candidates and an interactive
terminal, a numbered menu is shown on stderr. Exits with status 1 when no
correction is found.

Flags must come before the command words; everything from the first
positional word on is the failed command, dashes included:

  fixer correct --stderr "$err" git branch -d feature`,
	Annotations: map[string]string{quietAnnotation: "true"},
	RunE:        runCorrect,
}

func init() {
	f := correctCmd.Flags()
	f.SetInterspersed(false)
	f.StringVarP(&correctFlags.command, "command", "c", "", "the command line that failed")
	f.IntVarP(&correctFlags.exitCode, "exit-code", "e", 1, "exit status of the failed command")
	f.StringVar(&correctFlags.stdout, "stdout", "", "captured standard output")
	f.StringVar(&correctFlags.stderr, "stderr", "", "captured standard error")
	f.StringVarP(&correctFlags.output, "output", "o", "", "captured combined output, used when the streams were not split")
	f.StringVar(&correctFlags.cwd, "cwd", "", "working directory of the failed command (default: current directory)")
	f.BoolVarP(&correctFlags.noInteraction, "no-interaction", "y", false, "never prompt; print the best correction")
	f.BoolVarP(&correctFlags.all, "all", "a", false, "print every correction, best first")
	f.IntVarP(&correctFlags.maxResults, "max-results", "n", 0, "maximum number of corrections (default from config)")
	rootCmd.AddCommand(correctCmd)
}

func runCorrect(cmd *cobra.Command, args []string) error {
	inv, err := invocationFromFlags(args)
	if err != nil {
		return err
	}

	app, err := control.New(control.Config{App: appCfg, Logger: slog.Default()})
	if err != nil {
		return err
	}
	defer func() { _ = app.Stop(context.Background()) }()

	opts := app.Options()
	if correctFlags.maxResults > 0 {
		opts.MaxResults = correctFlags.maxResults
	}

	res, err := app.Correct(cmd.Context(), inv, opts)
	if err != nil {
		return err
	}
	if !res.Found() {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "no correction found")
		return errSilent
	}

	out := cmd.OutOrStdout()
	if correctFlags.all {
		for _, c := range res.Corrections {
			_, _ = fmt.Fprintln(out, c.Command)
		}
		return nil
	}

	choice := res.Corrections[0]
	if len(res.Corrections) > 1 && !correctFlags.noInteraction && appCfg.IsInteractive() && isTerminal(cmd.InOrStdin()) {
		choice, err = prompt(cmd.InOrStdin(), cmd.ErrOrStderr(), res.Corrections)
		if err != nil {
			return err
		}
	}
	_, _ = fmt.Fprintln(out, choice.Command)
	return nil
}

func invocationFromFlags(args []string) (domain.Invocation, error) {
	inv := domain.Invocation{
		Command:    correctFlags.command,
		ExitCode:   correctFlags.exitCode,
		Stdout:     correctFlags.stdout,
		Stderr:     correctFlags.stderr,
		WorkingDir: correctFlags.cwd,
		Env:        environ(os.Environ()),
	}
	if inv.Command == "" {
		inv.Command = strings.Join(args, " ")
	}
	if correctFlags.output != "" {
		inv.Stderr = joinOutput(inv.Stderr, correctFlags.output)
	}
	if inv.WorkingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return inv, fmt.Errorf("failed to resolve working directory: %w", err)
		}
		inv.WorkingDir = wd
	}
	return inv, inv.Validate()
}

func joinOutput(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + "\n" + b
}

func environ(pairs []string) map[string]string {
	env := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = v
		}
	}
	return env
}

// prompt lists the corrections on w and reads a 1-based choice from r.
// An empty answer selects the first one.
func prompt(r io.Reader, w io.Writer, corrections []domain.Correction) (domain.Correction, error) {
	for i, c := range corrections {
		_, _ = fmt.Fprintf(w, "%2d) %s\n", i+1, c.Command)
	}

	in := bufio.NewScanner(r)
	for {
		_, _ = fmt.Fprintf(w, "Select [1-%d, enter for 1, q to abort]: ", len(corrections))
		if !in.Scan() {
			if err := in.Err(); err != nil {
				return domain.Correction{}, err
			}
			return domain.Correction{}, errors.Join(errSilent, io.EOF)
		}

		answer := strings.TrimSpace(in.Text())
		switch answer {
		case "":
			return corrections[0], nil
		case "q", "Q":
			return domain.Correction{}, errSilent
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(corrections) {
			return corrections[n-1], nil
		}
		_, _ = fmt.Fprintf(w, "invalid choice %q\n", answer)
	}
}
