package recurrence

import (
	"time"
)

// GeneratorConfig holds configuration options for the occurrence generator.
type GeneratorConfig struct {
	// Cache configuration
	CacheEnabled bool
	CacheConfig  CacheConfig

	// Expansion bounds
	Expansion ExpansionOptions
}

// DefaultGeneratorConfig provides sensible defaults for production use.
var DefaultGeneratorConfig = GeneratorConfig{
	CacheEnabled: true,
	CacheConfig:  DefaultCacheConfig,
	Expansion:    DefaultExpansionOptions,
}

// HighVolumeConfig is optimized for callers expanding many series per
// request, trading expansion depth for cache hits.
var HighVolumeConfig = GeneratorConfig{
	CacheEnabled: true,
	CacheConfig: CacheConfig{
		TTL:        30 * time.Minute,
		MaxEntries: 5000,
	},
	Expansion: ExpansionOptions{
		MaxOccurrences: 500,
		MaxTimeSpan:    365 * 24 * time.Hour,
	},
}

// NoCacheConfig turns off caching entirely; every expansion recomputes.
var NoCacheConfig = GeneratorConfig{
	CacheEnabled: false,
	CacheConfig:  CacheConfig{}, // Not used
	Expansion:    DefaultExpansionOptions,
}
