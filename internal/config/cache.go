package config

import "time"

// CacheConfig defines settings for the response cache middleware. The cache
// only ever fronts the public ongoing-events listing; display payloads are
// assembled fresh on every request so tokens and windows are never stale.
type CacheConfig struct {
	Enabled      bool          // master switch
	TTL          time.Duration // lifetime of cache entries
	Prefix       string        // Redis key namespace
	MaxBodyBytes int           // responses larger than this are not cached
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		Prefix:       getenv("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}
