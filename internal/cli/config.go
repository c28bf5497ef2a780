package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vietddude/fixer/internal/core/config"
)

var configWrite bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print an example configuration",
	RunE:  runConfig,
}

func init() {
	configCmd.Flags().BoolVarP(&configWrite, "write", "w", false, "write the example to the --config path if the file does not exist")
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	if !configWrite {
		_, err := fmt.Fprint(cmd.OutOrStdout(), config.Example())
		return err
	}

	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("config file %s already exists", cfgPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(cfgPath, []byte(config.Example()), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "wrote", cfgPath)
	return nil
}
