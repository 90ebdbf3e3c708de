package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/natefinch/atomic"

	mdfxerrors "github.com/mdfx-dev/mdfx/internal/errors"
	"github.com/mdfx-dev/mdfx/internal/types"
)

// FileResult is the outcome of processing one input file.
type FileResult struct {
	Path        string
	OutputPath  string
	Diagnostics []*mdfxerrors.Error
	Err         error
}

// BatchOptions control a ProcessFiles run.
type BatchOptions struct {
	Target types.Target
	// OutputDir receives outputs named after the input stem. Empty means
	// write next to the input with a .out suffix before the extension.
	OutputDir string
	// TargetSuffix inserts the target name into output names, as build
	// does for multi-target runs: stem.github.md.
	TargetSuffix bool
}

// ProcessFiles fans the files out over the configured worker pool and
// collects per-file results in input order. Cancellation stops unstarted
// work; files already in flight finish. The asset manifest is flushed once
// after the whole batch.
func (pl *Pipeline) ProcessFiles(ctx context.Context, files []string, opts BatchOptions) []FileResult {
	results := make([]FileResult, len(files))

	type job struct {
		index int
		path  string
	}
	jobs := make(chan job)

	workers := pl.cfg.Batch.Workers
	if workers > len(files) {
		workers = len(files)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.index] = pl.processFile(ctx, j.path, opts)
			}
		}()
	}

	for i, path := range files {
		if ctx.Err() != nil {
			for k := i; k < len(files); k++ {
				results[k] = FileResult{Path: files[k], Err: ctx.Err()}
			}
			break
		}
		jobs <- job{index: i, path: path}
	}
	close(jobs)
	wg.Wait()

	if err := pl.Close(); err != nil {
		pl.logger.Error(ctx, err, "flushing asset manifest")
	}
	return results
}

func (pl *Pipeline) processFile(ctx context.Context, path string, opts BatchOptions) FileResult {
	res := FileResult{Path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		res.Err = mdfxerrors.IOFailure("reading "+path, err)
		return res
	}

	out, err := pl.ProcessDocument(path, string(raw), opts.Target)
	if out != nil {
		res.Diagnostics = out.Diagnostics
	}
	if err != nil {
		res.Err = err
		return res
	}

	res.OutputPath = outputPath(path, opts)
	if err := atomic.WriteFile(res.OutputPath, strings.NewReader(out.Output)); err != nil {
		res.Err = mdfxerrors.IOFailure("writing "+res.OutputPath, err)
		return res
	}

	pl.logger.Debug(ctx, "processed file",
		"input", path, "output", res.OutputPath, "diagnostics", len(res.Diagnostics))
	return res
}

func outputPath(input string, opts BatchOptions) string {
	ext := filepath.Ext(input)
	stem := strings.TrimSuffix(filepath.Base(input), ext)

	name := stem
	if opts.TargetSuffix {
		name = fmt.Sprintf("%s.%s", stem, opts.Target)
	} else if opts.OutputDir == "" {
		name = stem + ".out"
	}
	name += ext

	dir := opts.OutputDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, name)
}
