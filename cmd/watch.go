package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mdfx-dev/mdfx/internal/pipeline"
	"github.com/mdfx-dev/mdfx/internal/watcher"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <file...>",
	Short: "Reprocess documents whenever they change",
	Long: `Watch processes each file once, then reprocesses it on every change
until interrupted. Output goes next to the input with a .out suffix, the
same as batch processing without an output directory.

Examples:
  mdfx watch README.in.md
  mdfx watch docs/*.in.md --debounce 500ms`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 300*time.Millisecond,
		"quiet period before a change triggers reprocessing")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	target, err := cfg.Target()
	if err != nil {
		return err
	}

	pl, err := pipeline.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := pipeline.BatchOptions{Target: target}
	report := func(results []pipeline.FileResult) {
		for _, res := range results {
			printDiagnostics(cmd.ErrOrStderr(), res.Diagnostics)
			if res.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", res.Path, res.Err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", res.Path, res.OutputPath)
		}
	}

	// Initial pass before watching.
	report(pl.ProcessFiles(ctx, args, opts))

	w, err := watcher.New(watchDebounce, logger)
	if err != nil {
		return err
	}
	defer w.Stop()

	w.AddFilter(watcher.ExtensionFilter(cfg.Batch.Extensions))
	w.SetHandler(func(events []watcher.ChangeEvent) error {
		changed := make([]string, 0, len(events))
		for _, e := range events {
			changed = append(changed, e.Path)
		}
		report(pl.ProcessFiles(ctx, changed, opts))
		return nil
	})
	for _, path := range args {
		if err := w.AddFile(path); err != nil {
			return err
		}
	}
	w.Start(ctx)

	fmt.Fprintln(cmd.ErrOrStderr(), "Watching for changes, Ctrl-C to stop")
	<-ctx.Done()
	return nil
}
