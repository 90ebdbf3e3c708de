package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdfx-dev/mdfx/internal/types"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "github", cfg.Render.Target)
	assert.False(t, cfg.Render.Strict)
	assert.Equal(t, 64, cfg.Render.MaxNesting)
	assert.Equal(t, 16, cfg.Render.MaxExpansionDepth)
	assert.Equal(t, "assets", cfg.Assets.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.Contains(t, cfg.Batch.Extensions, ".md")
}

func TestLoadOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("render.target", "local")
	viper.Set("render.strict", true)
	viper.Set("render.max_nesting", 8)
	viper.Set("render.max_expansion_depth", 4)
	viper.Set("assets.dir", "build/img")
	viper.Set("batch.workers", 8)
	viper.Set("batch.output_dir", "out")
	viper.Set("registry.paths", []string{"registry.d"})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Render.Target)
	assert.True(t, cfg.Render.Strict)
	assert.Equal(t, 8, cfg.Render.MaxNesting)
	assert.Equal(t, 4, cfg.Render.MaxExpansionDepth)
	assert.Equal(t, "build/img", cfg.Assets.Dir)
	assert.Equal(t, 8, cfg.Batch.Workers)
	assert.Equal(t, "out", cfg.Batch.OutputDir)
	assert.Equal(t, []string{"registry.d"}, cfg.Registry.Paths)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]interface{}{
		"render.target":              "gopher-forge",
		"render.max_nesting":         -1,
		"render.max_expansion_depth": -2,
		"batch.workers":              500,
		"log.format":                 "xml",
	}
	for key, value := range cases {
		viper.Reset()
		viper.Set(key, value)
		_, err := Load()
		assert.Error(t, err, key)
	}
	viper.Reset()
}

func TestLoadRejectsBadExtension(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("batch.extensions", []string{"md"})
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch.extensions")
}

func TestTarget(t *testing.T) {
	cfg := Default()
	cfg.Render.Target = "gitlab"
	target, err := cfg.Target()
	require.NoError(t, err)
	assert.Equal(t, types.TargetGitLab, target)

	cfg.Render.Target = "bitbucket"
	_, err = cfg.Target()
	assert.Error(t, err)
}
