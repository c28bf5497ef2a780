package cli

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/fixer/internal/control"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List registered rules in evaluation order",
	RunE:  runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, args []string) error {
	app, err := control.New(control.Config{App: appCfg, Logger: slog.Default()})
	if err != nil {
		return err
	}
	defer func() { _ = app.Stop(cmd.Context()) }()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "ID\tKIND\tPRIORITY\tENABLED")
	for _, info := range app.Registry().Describe() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%t\n", info.ID, info.Kind, info.Priority, info.Enabled)
	}
	return w.Flush()
}
