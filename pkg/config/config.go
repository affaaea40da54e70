package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // timezone names must resolve on hosts without zoneinfo

	"gopkg.in/yaml.v3"
)

// logLevels maps accepted log_level spellings to the canonical name. It
// accepts the same names as logging.ParseLevel.
var logLevels = map[string]string{
	"trace":   "trace",
	"debug":   "debug",
	"info":    "info",
	"warn":    "warn",
	"warning": "warn",
	"error":   "error",
}

// Load reads and validates a configuration file.
// An empty path yields the defaults, still subject to environment overrides.
func Load(_ context.Context, path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors, fills unset values with
// defaults and resolves the timezone.
func Validate(cfg *Config) error {
	if cfg.Delimiter == "" {
		return errors.New("delimiter: must not be empty")
	}

	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	cfg.location = loc

	if cfg.TickInterval < 0 {
		return fmt.Errorf("tick_interval: must be positive, got %v", cfg.TickInterval)
	}
	if cfg.TickInterval == 0 {
		cfg.TickInterval = DefaultConfig().TickInterval
	}

	if err := validateColumns(cfg); err != nil {
		return fmt.Errorf("columns: %w", err)
	}

	level := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if level == "" {
		level = DefaultLogLevel
	}
	canonical, ok := logLevels[level]
	if !ok {
		return fmt.Errorf("log_level: invalid level %q (must be trace, debug, info, warn, or error)", cfg.LogLevel)
	}
	cfg.LogLevel = canonical

	if err := validateAnalysis(&cfg.Analysis); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}

	// Webhooks are optional, but validate if present
	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

func validateColumns(cfg *Config) error {
	seen := make(map[string]bool)
	for _, name := range cfg.Columns.Names() {
		if strings.TrimSpace(name) == "" {
			return errors.New("column names must not be empty")
		}
		if seen[name] {
			return fmt.Errorf("column %q is mapped more than once", name)
		}
		seen[name] = true
	}
	return nil
}

func validateAnalysis(a *AnalysisConfig) error {
	if a.MaxGap < 0 {
		return fmt.Errorf("max_gap: must be positive, got %v", a.MaxGap)
	}
	if a.MaxGap == 0 {
		a.MaxGap = DefaultMaxGap
	}
	if a.MaxSpeed < 0 {
		return fmt.Errorf("max_speed_kmh: must be positive, got %v", a.MaxSpeed)
	}
	if a.MaxSpeed == 0 {
		a.MaxSpeed = DefaultMaxSpeed
	}
	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	wh.Token = expandEnvVar(wh.Token)

	switch wh.Trigger {
	case "":
		wh.Trigger = WebhookTriggerOnIssues
	case WebhookTriggerOnIssues, WebhookTriggerAlways, WebhookTriggerNever:
	default:
		return fmt.Errorf("invalid trigger %q (must be on_issues, always, or never)", wh.Trigger)
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands a token written as ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		return os.Getenv(s[1:])
	}
	return s
}
