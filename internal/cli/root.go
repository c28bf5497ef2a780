package cli

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/vietddude/fixer/internal/core/config"
)

var (
	cfgPath string
	isDebug bool
	appCfg  *config.AppConfig
)

// errSilent marks failures that were already reported to the user.
var errSilent = errors.New("silent failure")

// quietAnnotation marks commands whose stdout is consumed by the shell.
const quietAnnotation = "quiet"

var rootCmd = &cobra.Command{
	Use:   "fixer",
	Short: "Suggest corrections for failed shell commands",
	Long: `Fixer inspects a failed command line and its output and prints a corrected
command. It never runs the correction itself; the shell integration does.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errSilent) {
			slog.Error("Command failed", "error", err)
		}
		os.Exit(1)
	}
}

func init() {
	defaultPath, err := config.DefaultPath()
	if err != nil {
		defaultPath = "config.yaml"
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultPath, "config file")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	// Load Configuration
	cfg, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		return err
	}
	appCfg = cfg

	initLogging(cmd.ErrOrStderr(), cfg.Logging, cmd.Annotations[quietAnnotation] != "")
	return nil
}

// initLogging installs the default logger. Quiet commands only surface
// warnings unless debugging, and always log to w.
func initLogging(w io.Writer, lc config.LoggingConfig, quiet bool) {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		level = slog.LevelInfo
	}
	if quiet && level < slog.LevelWarn {
		level = slog.LevelWarn
	}
	if isDebug {
		level = slog.LevelDebug
	}

	if lc.Format == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})))
		return
	}

	opts := &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	}
	if quiet {
		// stdout is reserved for the correction
		opts.NoColor = !isTerminal(w)
		slog.SetDefault(slog.New(tint.NewHandler(w, opts)))
		return
	}
	stylelog.InitDefault(opts)
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
