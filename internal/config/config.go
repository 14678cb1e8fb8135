// Package config loads promptdump settings from promptdump.yaml, the
// environment and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/simonhull/promptmeta/internal/types"
)

// Output formats accepted by the CLI.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "PROMPTDUMP"

// Config represents the promptdump configuration.
type Config struct {
	Output      string       `mapstructure:"output"`
	Concurrency int          `mapstructure:"concurrency"`
	Limits      types.Limits `mapstructure:"limits"`
	NoColor     bool         `mapstructure:"no_color"`
	CacheSize   int          `mapstructure:"cache_size"`
	Raw         bool         `mapstructure:"raw"`
	Verbose     bool         `mapstructure:"verbose"`
}

// New returns a viper instance with defaults, search paths and environment
// binding set up. Callers may bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	limits := types.DefaultLimits()
	v.SetDefault("output", OutputText)
	v.SetDefault("concurrency", runtime.NumCPU())
	v.SetDefault("limits.text_depth", limits.TextDepth)
	v.SetDefault("limits.chain_depth", limits.ChainDepth)
	v.SetDefault("no_color", false)
	v.SetDefault("cache_size", 256)
	v.SetDefault("raw", false)
	v.SetDefault("verbose", false)

	v.SetConfigName("promptdump")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "promptdump"))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the config file if one exists and returns the validated
// configuration. A missing config file is not an error.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UsedFile returns the config file Load read, or "" when none was found.
func UsedFile(v *viper.Viper) string {
	return v.ConfigFileUsed()
}

func validateConfig(cfg *Config) error {
	cfg.Output = strings.ToLower(strings.TrimSpace(cfg.Output))
	switch cfg.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("output must be one of text, json or yaml, got: %q", cfg.Output)
	}
	if cfg.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got: %d", cfg.Concurrency)
	}
	if cfg.Limits.TextDepth <= 0 {
		return fmt.Errorf("limits.text_depth must be positive, got: %d", cfg.Limits.TextDepth)
	}
	if cfg.Limits.ChainDepth <= 0 {
		return fmt.Errorf("limits.chain_depth must be positive, got: %d", cfg.Limits.ChainDepth)
	}
	if cfg.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative, got: %d", cfg.CacheSize)
	}
	return nil
}
