package config

import "time"

// BroadcasterConfig configures the live WebSocket broadcaster (§4.13).
type BroadcasterConfig struct {
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxFrameSize int           `mapstructure:"max_frame_size"`
	TailBlock    time.Duration `mapstructure:"tail_block"`
	TailCount    int64         `mapstructure:"tail_count"`
}
