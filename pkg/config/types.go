// Package config provides configuration loading and validation for gpsreplay.
package config

import (
	"time"

	"github.com/gpsreplay/gpsreplay/pkg/ingest"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// Delimiter separates fields in input and exported files.
	Delimiter string `yaml:"delimiter"`

	// Timezone is the IANA zone used for timestamps that carry no offset.
	// "UTC" by default; "Local" uses the machine's zone.
	Timezone string `yaml:"timezone"`

	// TickInterval is the playback refresh cadence.
	TickInterval time.Duration `yaml:"tick_interval"`

	// Columns maps logical fields to header names.
	Columns ingest.Columns `yaml:"columns"`

	// OutputDir receives exports that are not given an explicit path.
	// Empty means next to the source file.
	OutputDir string `yaml:"output_dir,omitempty"`

	// LogLevel is one of trace, debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Analysis AnalysisConfig  `yaml:"analysis"`
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`

	location *time.Location
}

// Location returns the zone resolved from Timezone during validation.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// AnalysisConfig tunes the diagnose checks.
type AnalysisConfig struct {
	// MaxGap is the longest tolerated interval between consecutive samples.
	MaxGap time.Duration `yaml:"max_gap"`

	// MaxSpeed is the fastest plausible movement between samples, in km/h.
	// Faster implied movement is reported as a position jump.
	MaxSpeed float64 `yaml:"max_speed_kmh"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnIssues fires only when a report contains issues (default).
	WebhookTriggerOnIssues WebhookTrigger = "on_issues"
	// WebhookTriggerAlways fires after every report, including exports.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "on_issues" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
