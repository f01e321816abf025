package config

type Config struct {
	// Global configuration
	App       AppConfig       `mapstructure:"app"`
	Http      HttpConfig      `mapstructure:"http"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// Domain configuration
	Database    DatabaseConfig    `mapstructure:"database"`
	Log         LogConfig         `mapstructure:"log"`
	Redis       RedisConfig       `mapstructure:"redis"`
	DurableLog  DurableLogConfig  `mapstructure:"durable_log"`
	Gateway     GatewayConfig     `mapstructure:"gateway"`
	Broadcaster BroadcasterConfig `mapstructure:"broadcaster"`
	SDK         SDKConfig         `mapstructure:"sdk"`
}
