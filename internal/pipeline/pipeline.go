// Package pipeline wires the scanning, parsing, expansion, and rendering
// stages into one document processor, plus batch processing over files.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mdfx-dev/mdfx/internal/assets"
	"github.com/mdfx-dev/mdfx/internal/config"
	mdfxerrors "github.com/mdfx-dev/mdfx/internal/errors"
	"github.com/mdfx-dev/mdfx/internal/expander"
	"github.com/mdfx-dev/mdfx/internal/logging"
	"github.com/mdfx-dev/mdfx/internal/parser"
	"github.com/mdfx-dev/mdfx/internal/registry"
	"github.com/mdfx-dev/mdfx/internal/renderer"
	"github.com/mdfx-dev/mdfx/internal/types"
)

// Pipeline runs documents through the full compile chain. It is safe for
// concurrent use; the asset cache serializes its own writes.
type Pipeline struct {
	cfg      *config.Config
	reg      *registry.Registry
	parser   *parser.Parser
	expander *expander.Expander
	logger   logging.Logger

	cacheOnce sync.Once
	cache     *assets.Cache
	cacheErr  error
}

// Result is one processed document.
type Result struct {
	Output      string
	Diagnostics []*mdfxerrors.Error
}

// New builds a pipeline from configuration: the default registry with any
// overlay directories applied, a parser honoring strict mode and nesting
// limits, and a component expander.
func New(cfg *config.Config, logger logging.Logger) (*Pipeline, error) {
	reg, err := registry.Default()
	if err != nil {
		return nil, fmt.Errorf("loading built-in registry: %w", err)
	}
	for _, dir := range cfg.Registry.Paths {
		if err := reg.LoadDir(dir); err != nil {
			return nil, fmt.Errorf("loading registry overlay: %w", err)
		}
		logger.Debug(context.Background(), "registry overlay applied", "dir", dir)
	}

	p := parser.New(reg, parser.Options{
		Strict:     cfg.Render.Strict,
		MaxNesting: cfg.Render.MaxNesting,
	})

	return &Pipeline{
		cfg:      cfg,
		reg:      reg,
		parser:   p,
		expander: expander.New(p, cfg.Render.MaxExpansionDepth),
		logger:   logger,
	}, nil
}

// Registry exposes the resolved registry for listing commands.
func (pl *Pipeline) Registry() *registry.Registry { return pl.reg }

// ProcessDocument compiles one document for one target. The document name
// is used only to annotate error and diagnostic positions. Diagnostics are
// returned even when processing fails partway.
func (pl *Pipeline) ProcessDocument(name, input string, target types.Target) (*Result, error) {
	parsed, err := pl.parser.Parse(input)
	if err != nil {
		return nil, pl.annotate(err, name, input)
	}
	diags := parsed.Diagnostics

	nodes, expandDiags, err := pl.expander.Expand(parsed.Nodes)
	diags = append(diags, expandDiags...)
	if err != nil {
		return &Result{Diagnostics: pl.annotateAll(diags, name, input)},
			pl.annotate(err, name, input)
	}

	rend, err := pl.rendererFor(target)
	if err != nil {
		return &Result{Diagnostics: pl.annotateAll(diags, name, input)}, err
	}
	text, renderDiags, err := rend.Render(nodes, target)
	diags = append(diags, renderDiags...)
	if err != nil {
		return &Result{Diagnostics: pl.annotateAll(diags, name, input)},
			pl.annotate(err, name, input)
	}

	return &Result{Output: text, Diagnostics: pl.annotateAll(diags, name, input)}, nil
}

// rendererFor builds a per-call renderer. The local target needs the asset
// cache; everything else renders registry-only.
func (pl *Pipeline) rendererFor(target types.Target) (*renderer.Renderer, error) {
	if target != types.TargetLocal {
		return renderer.New(pl.reg), nil
	}
	cache, err := pl.assetCache()
	if err != nil {
		return nil, err
	}
	return renderer.New(pl.reg, renderer.WithAssets(cache, pl.cfg.Assets.Prefix)), nil
}

// assetCache opens the cache on first local render. The manifest is loaded
// once and flushed by Close.
func (pl *Pipeline) assetCache() (*assets.Cache, error) {
	pl.cacheOnce.Do(func() {
		pl.cache, pl.cacheErr = assets.Open(pl.cfg.Assets.Dir, pl.logger)
	})
	return pl.cache, pl.cacheErr
}

// Close flushes the asset manifest if local rendering opened it.
func (pl *Pipeline) Close() error {
	if pl.cache == nil {
		return nil
	}
	return pl.cache.Flush()
}

func (pl *Pipeline) annotate(err error, name, input string) error {
	var e *mdfxerrors.Error
	if errors.As(err, &e) {
		return e.WithDocument(name).WithPosition(input)
	}
	return err
}

func (pl *Pipeline) annotateAll(diags []*mdfxerrors.Error, name, input string) []*mdfxerrors.Error {
	for _, d := range diags {
		d.WithDocument(name).WithPosition(input)
	}
	return diags
}
