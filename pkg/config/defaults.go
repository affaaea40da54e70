package config

import (
	"os"
	"time"

	"github.com/gpsreplay/gpsreplay/pkg/ingest"
	"github.com/gpsreplay/gpsreplay/pkg/player"
)

// Default values for configuration.
const (
	DefaultTimezone       = "UTC"
	DefaultLogLevel       = "info"
	DefaultMaxGap         = 5 * time.Second
	DefaultMaxSpeed       = 300.0
	DefaultWebhookTimeout = 10 * time.Second
)

// Environment variable names.
const (
	EnvTimezone  = "GPSREPLAY_TIMEZONE"
	EnvLogLevel  = "GPSREPLAY_LOG_LEVEL"
	EnvOutputDir = "GPSREPLAY_OUTPUT_DIR"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Delimiter:    ingest.DefaultDelimiter,
		Timezone:     DefaultTimezone,
		TickInterval: player.DefaultTickInterval,
		Columns:      ingest.DefaultColumns(),
		LogLevel:     DefaultLogLevel,
		Analysis: AnalysisConfig{
			MaxGap:   DefaultMaxGap,
			MaxSpeed: DefaultMaxSpeed,
		},
		location: time.UTC,
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if tz := os.Getenv(EnvTimezone); tz != "" {
		c.Timezone = tz
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.LogLevel = level
	}
	if dir := os.Getenv(EnvOutputDir); dir != "" {
		c.OutputDir = dir
	}
}
