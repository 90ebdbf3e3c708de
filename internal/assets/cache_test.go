package assets

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdfx-dev/mdfx/internal/logging"
)

func swatchParams(color string) map[string]string {
	return map[string]string{"color": color}
}

func TestHashDeterminism(t *testing.T) {
	a := Hash("swatch", map[string]string{"color": "7c3aed", "size": "16"})
	b := Hash("swatch", map[string]string{"size": "16", "color": "7c3aed"})
	assert.Equal(t, a, b, "key order must not affect the hash")

	c := Hash("swatch", map[string]string{"color": "7c3aee", "size": "16"})
	assert.NotEqual(t, a, c)

	d := Hash("donut", map[string]string{"color": "7c3aed", "size": "16"})
	assert.NotEqual(t, a, d, "kind participates in the hash")
}

func TestGetOrCreateWritesOnce(t *testing.T) {
	dir := t.TempDir()
	cache, err := Open(dir, logging.Discard())
	require.NoError(t, err)

	first, err := cache.GetOrCreate("swatch", swatchParams("7c3aed"))
	require.NoError(t, err)
	assert.Regexp(t, `^swatch_[0-9a-f]{16}\.svg$`, first)

	path := filepath.Join(dir, first)
	info, err := os.Stat(path)
	require.NoError(t, err)

	again, err := cache.GetOrCreate("swatch", swatchParams("7c3aed"))
	require.NoError(t, err)
	assert.Equal(t, first, again)

	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), after.ModTime(), "file must not be rewritten")
	assert.Equal(t, 1, cache.Len())
}

func TestManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cache, err := Open(dir, logging.Discard())
	require.NoError(t, err)
	first, err := cache.GetOrCreate("swatch", swatchParams("16a34a"))
	require.NoError(t, err)
	require.NoError(t, cache.Flush())

	raw, err := os.ReadFile(filepath.Join(dir, ManifestName))
	require.NoError(t, err)
	var m manifest
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "1.0.0", m.Version)
	assert.Len(t, m.Assets, 1)

	// A second run reuses the mapping without writing anything.
	reopened, err := Open(dir, logging.Discard())
	require.NoError(t, err)
	again, err := reopened.GetOrCreate("swatch", swatchParams("16a34a"))
	require.NoError(t, err)
	assert.Equal(t, first, again)
	require.NoError(t, os.Remove(filepath.Join(dir, first)))

	// Known hash short-circuits before any rendering or disk I/O.
	cached, err := reopened.GetOrCreate("swatch", swatchParams("16a34a"))
	require.NoError(t, err)
	assert.Equal(t, first, cached)
	_, err = os.Stat(filepath.Join(dir, first))
	assert.True(t, os.IsNotExist(err))
}

func TestCorruptManifestStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestName), []byte("{nope"), 0o644))

	cache, err := Open(dir, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, 0, cache.Len())
}

func TestFlushWithoutChangesWritesNothing(t *testing.T) {
	dir := t.TempDir()
	cache, err := Open(dir, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, cache.Flush())

	_, err = os.Stat(filepath.Join(dir, ManifestName))
	assert.True(t, os.IsNotExist(err))
}

func TestRenderFailureStillReturnsPath(t *testing.T) {
	dir := t.TempDir()
	cache, err := Open(dir, logging.Discard())
	require.NoError(t, err)

	path, err := cache.GetOrCreate("bar", map[string]string{"value": "x", "max": "10", "color": "abc123"})
	require.Error(t, err)
	assert.Regexp(t, `^bar_[0-9a-f]{16}\.svg$`, path, "intended path survives the failure")
}

func TestConcurrentGetOrCreate(t *testing.T) {
	dir := t.TempDir()
	cache, err := Open(dir, logging.Discard())
	require.NoError(t, err)

	done := make(chan string, 16)
	for i := 0; i < 16; i++ {
		go func() {
			p, err := cache.GetOrCreate("swatch", swatchParams("2563eb"))
			assert.NoError(t, err)
			done <- p
		}()
	}
	first := <-done
	for i := 1; i < 16; i++ {
		assert.Equal(t, first, <-done)
	}
	assert.Equal(t, 1, cache.Len())
}

func TestDistinctParamsDistinctFiles(t *testing.T) {
	dir := t.TempDir()
	cache, err := Open(dir, logging.Discard())
	require.NoError(t, err)

	var paths []string
	for _, color := range []string{"7c3aed", "2563eb", "16a34a"} {
		p, err := cache.GetOrCreate("swatch", swatchParams(color))
		require.NoError(t, err)
		paths = append(paths, p)
	}
	assert.NotEqual(t, paths[0], paths[1])
	assert.NotEqual(t, paths[1], paths[2])
	assert.Equal(t, 3, cache.Len())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var svgs int
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".svg" {
			svgs++
		}
	}
	assert.Equal(t, 3, svgs, fmt.Sprintf("entries: %v", entries))
}
