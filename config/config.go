// Package config holds the process-wide provenance configuration.
//
// One default configuration applies to the whole process. Call sites that
// need different behavior for a bounded stretch of work (tests, batch
// re-computation with tracking disabled) use Override, which swaps the
// active configuration and restores the previous one on exit.
package config

import (
	"sync/atomic"
)

// Config controls provenance tracking behavior.
type Config struct {
	// Enabled toggles provenance record creation entirely.
	Enabled bool `mapstructure:"enabled"`

	// TrackLiterals controls whether literal construction stamps records.
	TrackLiterals bool `mapstructure:"track_literals"`

	// TrackOperations controls whether arithmetic and conversions stamp records.
	TrackOperations bool `mapstructure:"track_operations"`

	// EnableSpans controls whether active span frames merge into record meta.
	EnableSpans bool `mapstructure:"enable_spans"`

	// MaxHashCacheSize bounds the node-hash cache (entries).
	MaxHashCacheSize int `mapstructure:"max_hash_cache_size"`

	// MaxHistoryDepth bounds how deep Explain walks before truncating.
	MaxHistoryDepth int `mapstructure:"max_history_depth"`

	// EnableHistoryTruncation enforces MaxHistoryDepth in Explain output.
	EnableHistoryTruncation bool `mapstructure:"enable_history_truncation"`

	// EnableWeakRefs enables bounded interning-table bookkeeping.
	EnableWeakRefs bool `mapstructure:"enable_weak_refs"`

	// StrictNulls makes operations on undefined amounts fail instead of
	// propagating an undefined result.
	StrictNulls bool `mapstructure:"strict_nulls"`

	// StrictArithmetic makes domain-undefined results (division by zero)
	// fail instead of degrading to an undefined value.
	StrictArithmetic bool `mapstructure:"strict_arithmetic"`
}

var active atomic.Pointer[Config]

func init() {
	def := Default()
	active.Store(&def)
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Enabled:                 true,
		TrackLiterals:           true,
		TrackOperations:         true,
		EnableSpans:             true,
		MaxHashCacheSize:        10000,
		MaxHistoryDepth:         50,
		EnableHistoryTruncation: true,
		EnableWeakRefs:          true,
	}
}

// Active returns the currently effective configuration.
func Active() Config {
	return *active.Load()
}

// Set replaces the process-wide configuration.
func Set(cfg Config) {
	c := cfg
	active.Store(&c)
}

// Override installs cfg for the duration of fn and restores the previous
// configuration afterward, on all exit paths.
//
// Overrides are process-wide, not goroutine-scoped: concurrent work sees the
// override while fn runs.
func Override(cfg Config, fn func()) {
	prev := active.Load()
	c := cfg
	active.Store(&c)
	defer active.Store(prev)
	fn()
}
