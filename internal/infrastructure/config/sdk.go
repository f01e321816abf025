package config

import "time"

// SDKConfig mirrors the AGENTSTACK_* environment variables of §6.
type SDKConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	CollectorURL   string        `mapstructure:"collector_url"`
	Enabled        bool          `mapstructure:"enabled"`
	BatchSize      int           `mapstructure:"batch_size"`
	ExportInterval time.Duration `mapstructure:"export_interval"`
	MaxQueueSize   int           `mapstructure:"max_queue_size"`
	ServiceName    string        `mapstructure:"service_name"`
	FallbackDBPath string        `mapstructure:"fallback_db_path"`
}
