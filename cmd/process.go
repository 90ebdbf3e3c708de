package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mdfx-dev/mdfx/internal/pipeline"
)

var (
	processOutput  string
	processBackend string
)

var processCmd = &cobra.Command{
	Use:   "process <file|->",
	Short: "Process one document and print or write the result",
	Long: `Process compiles the embedded markup in a single document for the
configured target. Reads from stdin when the argument is "-".

The backend flag picks how visual primitives are emitted: "shields"
(the default) emits shields.io image references on image-capable targets,
"svg" generates local SVG assets regardless of the configured target.

Examples:
  mdfx process README.in.md -o README.md
  mdfx process README.in.md --target npm
  cat notes.txt | mdfx process - --strict
  mdfx process README.in.md --backend svg --assets-dir docs/img`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVarP(&processOutput, "output", "o", "",
		"output file (default stdout)")
	processCmd.Flags().StringVar(&processBackend, "backend", "shields",
		"visual primitive backend (shields, svg)")
	processCmd.Flags().String("target", "", "render target (github, gitlab, npm, pypi, local)")
	processCmd.Flags().Bool("strict", false, "fail on unresolved tags instead of passing them through")
	processCmd.Flags().String("assets-dir", "", "directory for generated SVG assets")
	_ = viper.BindPFlag("render.target", processCmd.Flags().Lookup("target"))
	_ = viper.BindPFlag("render.strict", processCmd.Flags().Lookup("strict"))
	_ = viper.BindPFlag("assets.dir", processCmd.Flags().Lookup("assets-dir"))
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	switch processBackend {
	case "shields":
	case "svg":
		cfg.Render.Target = "local"
	default:
		return fmt.Errorf("unknown backend %q, expected shields or svg", processBackend)
	}
	target, err := cfg.Target()
	if err != nil {
		return err
	}

	name := args[0]
	var input []byte
	if name == "-" {
		name = "stdin"
		input, err = io.ReadAll(cmd.InOrStdin())
	} else {
		input, err = os.ReadFile(name)
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	pl, err := pipeline.New(cfg, logger)
	if err != nil {
		return err
	}

	res, err := pl.ProcessDocument(name, string(input), target)
	if res != nil {
		printDiagnostics(cmd.ErrOrStderr(), res.Diagnostics)
	}
	if err != nil {
		return err
	}
	if err := pl.Close(); err != nil {
		return err
	}

	if processOutput == "" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), res.Output)
		return err
	}
	return atomic.WriteFile(processOutput, strings.NewReader(res.Output))
}
