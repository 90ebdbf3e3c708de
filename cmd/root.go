// Package cmd provides the mdfx command-line interface with configuration
// management over multiple sources.
//
// Configuration precedence, highest first:
//  1. Command-line flags (--target, --strict, ...)
//  2. MDFX_CONFIG_FILE environment variable - custom config file path
//  3. Individual environment variables (MDFX_RENDER_TARGET, ...)
//  4. Configuration file (.mdfx.yml)
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mdfx-dev/mdfx/internal/config"
	"github.com/mdfx-dev/mdfx/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mdfx",
	Short: "Compile embedded markup in text and markdown into styled output",
	Long: `mdfx compiles {{...}} markup embedded in plain text or Markdown into
Unicode-styled text, shields.io image references, or locally generated SVG
assets.

Quick Start:
  mdfx process README.in.md -o README.md     Process one document
  mdfx build README.in.md --all-targets      Render for every target
  mdfx convert --style mathbold "TITLE"      Style a string directly
  mdfx list styles                           Show available styles
  mdfx init                                  Write a default .mdfx.yml
  mdfx watch README.in.md                    Reprocess on change`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Accept underscore spellings for flags, matching config keys.
	rootCmd.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is .mdfx.yml, can also use MDFX_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("MDFX_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(config.FileName)
	}

	// MDFX_RENDER_TARGET, MDFX_ASSETS_DIR, MDFX_BATCH_WORKERS, ...
	viper.SetEnvPrefix("MDFX")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig resolves the effective configuration and a logger built from
// its log section.
func loadConfig() (*config.Config, logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(&logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	return cfg, logger, nil
}
