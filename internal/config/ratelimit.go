package config

import "time"

// RateLimitConfig tunes the Redis token bucket guarding the auth endpoints
// (credential stuffing) and the submission endpoint (flooding the review
// queue). One bucket per key; the key strategy decides what a "caller" is.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int           // bucket size, i.e. the allowed burst
	RefillTokens   int           // tokens added per interval
	RefillInterval time.Duration // how often tokens are added
	TTL            time.Duration // idle bucket expiry in Redis
	KeyStrategy    string        // ip | user | route | combinations; default ip_user_route
	Prefix         string        // Redis key namespace
	Debug          bool          // expose bucket keys and log limiter decisions
}

// LoadRateLimitConfig reads the RATE_LIMIT_* environment variables. The
// defaults allow a burst of 60 with one token back per second, which is
// generous for a student posting and tight enough to blunt scripted abuse.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        boolDefault("RATE_LIMIT_ENABLED", true),
		Capacity:       intDefault("RATE_LIMIT_CAPACITY", 60),
		RefillTokens:   intDefault("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: durDefault("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            durDefault("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    getenv("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
		Prefix:         getenv("RATE_LIMIT_PREFIX", "rl:safety"),
		Debug:          boolDefault("RATE_LIMIT_DEBUG", false),
	}

	// Clamp nonsense values instead of failing: a broken limiter config must
	// not take the service down, only fall back to sane throttling.
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillTokens < 1 {
		cfg.RefillTokens = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	if min := 5 * cfg.RefillInterval; cfg.TTL < min {
		cfg.TTL = min
	}
	return cfg
}
