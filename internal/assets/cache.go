// Package assets implements the content-addressed asset store for the
// local SVG backend. Every visual primitive instance hashes its semantic
// rendering parameters; identical parameters anywhere in a document, or
// across runs, map to one file on disk. A persisted manifest carries the
// hash-to-path mapping between runs so asset directories stay small and
// version-control diffs stay quiet.
package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/natefinch/atomic"

	mdfxerrors "github.com/mdfx-dev/mdfx/internal/errors"
	"github.com/mdfx-dev/mdfx/internal/logging"
	"github.com/mdfx-dev/mdfx/internal/svg"
)

// ManifestName is the mapping file kept inside the assets directory.
const ManifestName = "manifest.json"

const manifestVersion = "1.0.0"

type manifest struct {
	Version string            `json:"version"`
	Assets  map[string]string `json:"assets"`
}

// Cache owns the assets directory and its manifest. It is the only shared
// mutable state in a batch run, so inserts are mutex-guarded and manifest
// persistence happens once, at Flush.
type Cache struct {
	dir    string
	logger logging.Logger

	mu      sync.Mutex
	entries map[string]string // hash -> relative path
	dirty   bool
}

// Open prepares the assets directory and loads an existing manifest. A
// corrupt manifest is logged and treated as empty rather than failing the
// run; the content-addressed naming makes rebuilding it safe.
func Open(dir string, logger logging.Logger) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, mdfxerrors.IOFailure("creating assets directory", err)
	}

	c := &Cache{
		dir:     dir,
		logger:  logger.WithComponent("assets"),
		entries: make(map[string]string),
	}

	path := filepath.Join(dir, ManifestName)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, mdfxerrors.IOFailure("reading manifest", err)
	}

	var m manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		c.logger.Warn(context.Background(), mdfxerrors.ManifestCorrupt(path, err),
			"manifest unreadable, starting empty", "path", path)
		return c, nil
	}
	if m.Assets != nil {
		c.entries = m.Assets
	}
	return c, nil
}

// Hash computes the stable 64-bit content address for one visual primitive.
// It hashes the semantic parameters, not the generated SVG text, so the
// address survives cosmetic generator refactors. Identical hashes are
// treated as the same asset by contract.
func Hash(kind string, params map[string]string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(kind))
	h.Write([]byte{0})

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(params[k]))
		h.Write([]byte{0})
	}
	return h.Sum64()
}

// GetOrCreate returns the relative path for a visual primitive, rendering
// and writing the SVG only when the hash is new. The returned path is valid
// even when err is non-nil: a failed decorative asset must not take the
// document's text down with it, so callers keep the reference and surface
// the error separately.
func (c *Cache) GetOrCreate(kind string, params map[string]string) (string, error) {
	hash := Hash(kind, params)
	relative := fmt.Sprintf("%s_%016x.svg", kind, hash)

	c.mu.Lock()
	defer c.mu.Unlock()

	key := fmt.Sprintf("%016x", hash)
	if existing, ok := c.entries[key]; ok {
		return existing, nil
	}

	document, err := svg.Render(kind, params)
	if err != nil {
		return relative, mdfxerrors.IOFailure("rendering "+kind+" asset", err)
	}

	target := filepath.Join(c.dir, relative)
	if _, err := os.Stat(target); os.IsNotExist(err) {
		if err := atomic.WriteFile(target, bytes.NewReader([]byte(document))); err != nil {
			return relative, mdfxerrors.IOFailure("writing "+relative, err)
		}
	}

	c.entries[key] = relative
	c.dirty = true
	return relative, nil
}

// Len reports how many assets the manifest currently tracks.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Flush persists the manifest if anything changed since Open.
func (c *Cache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}

	m := manifest{Version: manifestVersion, Assets: c.entries}
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return mdfxerrors.IOFailure("encoding manifest", err)
	}
	raw = append(raw, '\n')

	path := filepath.Join(c.dir, ManifestName)
	if err := atomic.WriteFile(path, bytes.NewReader(raw)); err != nil {
		return mdfxerrors.IOFailure("writing manifest", err)
	}
	c.dirty = false
	return nil
}
