package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/teranos/tally/errors"
)

var viperInstance *viper.Viper

// Load reads the tally configuration using Viper and installs it as the
// active process-wide configuration.
//
// Precedence: defaults -> tally.toml (walking up from the working
// directory) -> TALLY_* environment variables.
func Load() (Config, error) {
	v := initViper()
	cfg, err := LoadWithViper(v)
	if err != nil {
		return Config{}, err
	}
	Set(cfg)
	return cfg, nil
}

// LoadWithViper loads configuration from a provided Viper instance.
func LoadWithViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to unmarshal provenance config")
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific file path without
// consulting environment variables.
func LoadFromFile(configPath string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config file %s", configPath)
	}
	return LoadWithViper(v)
}

// GetViper returns the shared Viper instance for advanced access.
func GetViper() *viper.Viper {
	return initViper()
}

// Reset clears the cached Viper instance and restores the built-in defaults
// (useful for testing).
func Reset() {
	viperInstance = nil
	Set(Default())
}

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("enabled", def.Enabled)
	v.SetDefault("track_literals", def.TrackLiterals)
	v.SetDefault("track_operations", def.TrackOperations)
	v.SetDefault("enable_spans", def.EnableSpans)
	v.SetDefault("max_hash_cache_size", def.MaxHashCacheSize)
	v.SetDefault("max_history_depth", def.MaxHistoryDepth)
	v.SetDefault("enable_history_truncation", def.EnableHistoryTruncation)
	v.SetDefault("enable_weak_refs", def.EnableWeakRefs)
	v.SetDefault("strict_nulls", def.StrictNulls)
	v.SetDefault("strict_arithmetic", def.StrictArithmetic)
}

func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()
	v.SetEnvPrefix("TALLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if path := findProjectConfig(); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		// Missing or unreadable files fall back to defaults + env.
		_ = v.ReadInConfig()
	}

	viperInstance = v
	return v
}

// findProjectConfig searches for tally.toml by walking up the directory tree.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		path := filepath.Join(dir, "tally.toml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
