package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mdfx-dev/mdfx/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .mdfx.yml configuration file",
	Long: `Init writes a .mdfx.yml with the default configuration into the
current directory so the settings are visible and editable.

Examples:
  mdfx init
  mdfx init --force`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVarP(&initForce, "force", "f", false,
		"overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := config.FileName + ".yml"
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	raw, err := yaml.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("marshalling default config: %w", err)
	}

	header := []byte("# mdfx configuration. Flags and MDFX_* environment variables override\n# values here; see `mdfx --help` for the full precedence.\n")
	if err := os.WriteFile(path, append(header, raw...), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
