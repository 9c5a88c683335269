package config

import "time"

// ServerConfig holds the daemon's HTTP API configuration
type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Listen address (host:port)
	Address string `mapstructure:"address" validate:"required_if=Enabled true"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// RateLimitConfig holds token bucket settings
type RateLimitConfig struct {
	// Sustained requests per second
	Requests float64 `mapstructure:"requests" validate:"gt=0"`

	// Burst size for token bucket
	Burst int `mapstructure:"burst" validate:"min=1"`
}
