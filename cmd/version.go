package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mdfx-dev/mdfx/internal/version"
)

var versionFormat string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringVarP(&versionFormat, "format", "f", "text",
		"output format (text, json)")
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := version.Get()
	switch versionFormat {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	case "text":
		fmt.Fprintf(cmd.OutOrStdout(), "mdfx %s\n", info.Version)
		fmt.Fprintf(cmd.OutOrStdout(), "  commit:   %s\n", info.GitCommit)
		fmt.Fprintf(cmd.OutOrStdout(), "  built:    %s\n", info.BuildTime)
		fmt.Fprintf(cmd.OutOrStdout(), "  go:       %s\n", info.GoVersion)
		fmt.Fprintf(cmd.OutOrStdout(), "  platform: %s\n", info.Platform)
		return nil
	default:
		return fmt.Errorf("unknown format %q, expected text or json", versionFormat)
	}
}
