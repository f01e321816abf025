package config

import "time"

// GatewayConfig configures the ingest gateway (§4.6) and the auth cache (§4.7).
type GatewayConfig struct {
	MaxBodyBytes     int64         `mapstructure:"max_body_bytes"`
	MaxSpansPerBatch int           `mapstructure:"max_spans_per_batch"`
	AllowedOrigins   []string      `mapstructure:"allowed_origins"`
	AuthCacheMaxSize int           `mapstructure:"auth_cache_max_size"`
	RateLimitPerMin  int           `mapstructure:"rate_limit_per_min"`
	RateLimitWindow  time.Duration `mapstructure:"rate_limit_window"`
}
