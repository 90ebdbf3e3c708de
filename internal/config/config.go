// Package config provides configuration management for mdfx using Viper,
// loading from .mdfx.yml files, MDFX_-prefixed environment variables, and
// command-line flags.
//
// Configuration covers the render pipeline (target, strict mode, nesting and
// expansion limits), local asset generation, registry overlay paths, logging,
// and batch processing.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/mdfx-dev/mdfx/internal/types"
)

// FileName is the config file base name looked up in the working directory
// and its ancestors.
const FileName = ".mdfx"

// Config carries both tag sets: yaml for writing .mdfx.yml (init command)
// and mapstructure for viper.Unmarshal, which ignores yaml tags.
type Config struct {
	Render   RenderConfig   `yaml:"render" mapstructure:"render"`
	Assets   AssetsConfig   `yaml:"assets" mapstructure:"assets"`
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	// TargetFiles come from CLI arguments, never from the config file.
	TargetFiles []string `yaml:"-" mapstructure:"-"`
}

type RenderConfig struct {
	Target            string `yaml:"target" mapstructure:"target"`
	Strict            bool   `yaml:"strict" mapstructure:"strict"`
	MaxNesting        int    `yaml:"max_nesting" mapstructure:"max_nesting"`
	MaxExpansionDepth int    `yaml:"max_expansion_depth" mapstructure:"max_expansion_depth"`
}

type AssetsConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Prefix string `yaml:"prefix" mapstructure:"prefix"`
}

type RegistryConfig struct {
	// Paths are overlay directories merged over the built-in definitions,
	// in order, later directories winning.
	Paths []string `yaml:"paths" mapstructure:"paths"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

type BatchConfig struct {
	Workers    int      `yaml:"workers" mapstructure:"workers"`
	Extensions []string `yaml:"extensions" mapstructure:"extensions"`
	OutputDir  string   `yaml:"output_dir" mapstructure:"output_dir"`
}

// Load unmarshals the active viper state into a validated Config.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Handle slice keys set via viper (workaround for viper slice handling)
	if viper.IsSet("registry.paths") && len(config.Registry.Paths) == 0 {
		config.Registry.Paths = viper.GetStringSlice("registry.paths")
	}
	if viper.IsSet("batch.extensions") && len(config.Batch.Extensions) == 0 {
		config.Batch.Extensions = viper.GetStringSlice("batch.extensions")
	}
	if viper.IsSet("render.strict") {
		config.Render.Strict = viper.GetBool("render.strict")
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// Default returns the configuration used when no file or flags are present.
func Default() *Config {
	var config Config
	applyDefaults(&config)
	return &config
}

func applyDefaults(config *Config) {
	if config.Render.Target == "" {
		config.Render.Target = string(types.TargetGitHub)
	}
	if config.Render.MaxNesting == 0 {
		config.Render.MaxNesting = 64
	}
	if config.Render.MaxExpansionDepth == 0 {
		config.Render.MaxExpansionDepth = 16
	}
	if config.Assets.Dir == "" {
		config.Assets.Dir = "assets"
	}
	if config.Assets.Prefix == "" {
		config.Assets.Prefix = "assets"
	}
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}
	if config.Batch.Workers == 0 {
		config.Batch.Workers = 4
	}
	if len(config.Batch.Extensions) == 0 {
		config.Batch.Extensions = []string{".md", ".markdown", ".txt"}
	}
}

// Target returns the parsed render target.
func (c *Config) Target() (types.Target, error) {
	target, ok := types.ParseTarget(c.Render.Target)
	if !ok {
		return "", fmt.Errorf("unknown target %q, expected one of %v",
			c.Render.Target, types.AllTargets())
	}
	return target, nil
}

// Validate checks value ranges and enumerations. Path existence is not
// checked here; commands report missing files with position-free errors.
func (c *Config) Validate() error {
	if _, ok := types.ParseTarget(c.Render.Target); !ok {
		return fmt.Errorf("render.target: unknown target %q, expected one of %v",
			c.Render.Target, types.AllTargets())
	}
	if c.Render.MaxNesting < 1 {
		return fmt.Errorf("render.max_nesting must be positive, got %d", c.Render.MaxNesting)
	}
	if c.Render.MaxExpansionDepth < 1 {
		return fmt.Errorf("render.max_expansion_depth must be positive, got %d",
			c.Render.MaxExpansionDepth)
	}
	if c.Batch.Workers < 1 || c.Batch.Workers > 64 {
		return fmt.Errorf("batch.workers must be in 1-64, got %d", c.Batch.Workers)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	for _, ext := range c.Batch.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("batch.extensions entries must start with a dot, got %q", ext)
		}
	}
	return nil
}
