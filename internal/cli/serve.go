package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/fixer/internal/control"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the correction daemon",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if servePort > 0 {
		appCfg.Server.Port = servePort
	}

	app, err := control.New(control.Config{App: appCfg, Logger: slog.Default()})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := app.Start(ctx); err != nil {
		return err
	}
	slog.Info("Fixer daemon started", "config", cfgPath, "port", appCfg.Server.Port, "rules", app.Registry().Len())

	sig := <-sigChan
	slog.Info("Received signal, shutting down...", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
		return errSilent
	}
	slog.Info("Fixer stopped gracefully")
	return nil
}
