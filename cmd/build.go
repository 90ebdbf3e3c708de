package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mdfx-dev/mdfx/internal/config"
	"github.com/mdfx-dev/mdfx/internal/pipeline"
	"github.com/mdfx-dev/mdfx/internal/types"
)

var (
	buildAllTargets bool
	buildTargets    []string
	buildOutDir     string
)

var buildCmd = &cobra.Command{
	Use:   "build <file...>",
	Short: "Render documents for one or more targets",
	Long: `Build parses each document once and renders it for every requested
target, writing <stem>.<target>.md next to the input or under --out-dir.

Examples:
  mdfx build README.in.md --all-targets
  mdfx build README.in.md --targets github,npm --out-dir dist`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().BoolVar(&buildAllTargets, "all-targets", false,
		"render for every known target")
	buildCmd.Flags().StringSliceVar(&buildTargets, "targets", nil,
		"comma-separated targets to render")
	buildCmd.Flags().StringVar(&buildOutDir, "out-dir", "", "output directory")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	targets, err := buildTargetList(cfg)
	if err != nil {
		return err
	}

	pl, err := pipeline.New(cfg, logger)
	if err != nil {
		return err
	}

	var failed bool
	for _, target := range targets {
		results := pl.ProcessFiles(cmd.Context(), args, pipeline.BatchOptions{
			Target:       target,
			OutputDir:    buildOutDir,
			TargetSuffix: true,
		})
		for _, res := range results {
			printDiagnostics(cmd.ErrOrStderr(), res.Diagnostics)
			if res.Err != nil {
				failed = true
				fmt.Fprintf(cmd.ErrOrStderr(), "%s [%s]: %v\n", res.Path, target, res.Err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", res.Path, res.OutputPath)
		}
	}
	if failed {
		return errors.New("build finished with errors")
	}
	return nil
}

func buildTargetList(cfg *config.Config) ([]types.Target, error) {
	if buildAllTargets {
		return types.AllTargets(), nil
	}
	if len(buildTargets) == 0 {
		target, err := cfg.Target()
		if err != nil {
			return nil, err
		}
		return []types.Target{target}, nil
	}
	targets := make([]types.Target, 0, len(buildTargets))
	for _, name := range buildTargets {
		target, ok := types.ParseTarget(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("unknown target %q, expected one of %v",
				name, types.AllTargets())
		}
		targets = append(targets, target)
	}
	return targets, nil
}
