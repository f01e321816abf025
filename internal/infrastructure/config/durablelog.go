package config

import "time"

// DurableLogConfig configures the Redis-Streams-backed durable log client
// shared by the ingest gateway, the three consumer-group workers, and the
// live broadcaster's tail reader.
type DurableLogConfig struct {
	SpansTopic  string        `mapstructure:"spans_topic"`
	AlertsTopic string        `mapstructure:"alerts_topic"`
	MaxLen      int64         `mapstructure:"max_len"`
	BlockWait   time.Duration `mapstructure:"block_wait"`
}
