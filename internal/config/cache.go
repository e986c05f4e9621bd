package config

import (
	"strings"
	"time"
)

// CacheConfig tunes the Redis response cache in front of the anonymous
// browse surface: the public feed and the resource directory. Those are the
// only cacheable responses in the service; everything else depends on the
// requester's identity or consent state and must never be served stale.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool // HTTP methods eligible for caching
	TTL          time.Duration   // entry lifetime; bounds feed staleness
	Prefix       string          // Redis key namespace
	MaxBodyBytes int             // responses larger than this are not cached
}

// LoadCacheConfig reads the FEED_CACHE_* environment variables. The 30s
// default TTL bounds how long a just-published entry can take to appear on
// the feed; held entries never reach the feed query at all, so staleness is a
// freshness concern, not a safety one.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      boolDefault("FEED_CACHE_ENABLED", true),
		Methods:      parseMethods(getenv("FEED_CACHE_METHODS", "GET")),
		TTL:          durDefault("FEED_CACHE_TTL", 30*time.Second),
		Prefix:       getenv("FEED_CACHE_PREFIX", "feed"),
		MaxBodyBytes: intDefault("FEED_CACHE_MAX_BODY_BYTES", 1<<20),
	}
}

func parseMethods(s string) map[string]bool {
	m := make(map[string]bool)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(strings.ToUpper(p)); p != "" {
			m[p] = true
		}
	}
	return m
}
