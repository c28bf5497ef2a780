package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/fixer/internal/control"
	"github.com/vietddude/fixer/internal/core/domain"
)

var (
	diagLimit int
	diagClear bool
)

var errNoStore = errors.New("diagnostics store is not configured (set redis.url)")

var diagnosticsCmd = &cobra.Command{
	Use:   "diagnostics [request-id]",
	Short: "Show recent evaluation traces",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDiagnostics,
}

func init() {
	diagnosticsCmd.Flags().IntVarP(&diagLimit, "limit", "l", 20, "number of records to show")
	diagnosticsCmd.Flags().BoolVar(&diagClear, "clear", false, "delete every stored record")
	rootCmd.AddCommand(diagnosticsCmd)
}

func runDiagnostics(cmd *cobra.Command, args []string) error {
	app, err := control.New(control.Config{App: appCfg, Logger: slog.Default()})
	if err != nil {
		return err
	}
	defer func() { _ = app.Stop(cmd.Context()) }()

	store := app.Store()
	if store == nil {
		return errNoStore
	}
	ctx := cmd.Context()

	if diagClear {
		return store.Clear(ctx)
	}

	var records []domain.Diagnostic
	if len(args) == 1 {
		d, found, err := store.Get(ctx, args[0])
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no diagnostic for request %s", args[0])
		}
		records = append(records, d)
	} else {
		records, err = store.Recent(ctx, diagLimit)
		if err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "REQUEST\tTIME\tCOMMAND\tEXIT\tBEST\tRULES")
	for _, d := range records {
		best := "-"
		if len(d.Corrections) > 0 {
			best = d.Corrections[0].Command
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			d.RequestID,
			time.Unix(d.CreatedAt, 0).Format(time.RFC3339),
			d.Command,
			d.ExitCode,
			best,
			summarize(d.Reports),
		)
	}
	return w.Flush()
}

// summarize counts reports per status, e.g. "matched=2 timeout=1".
func summarize(reports []domain.RuleReport) string {
	counts := make(map[domain.RuleStatus]int)
	var order []domain.RuleStatus
	for _, r := range reports {
		if counts[r.Status] == 0 {
			order = append(order, r.Status)
		}
		counts[r.Status]++
	}
	parts := make([]string, 0, len(order))
	for _, s := range order {
		parts = append(parts, fmt.Sprintf("%s=%d", s, counts[s]))
	}
	return strings.Join(parts, " ")
}
