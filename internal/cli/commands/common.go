package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gpsreplay/gpsreplay/internal/logging"
	"github.com/gpsreplay/gpsreplay/pkg/config"
	"github.com/gpsreplay/gpsreplay/pkg/engine"
	"github.com/gpsreplay/gpsreplay/pkg/ingest"
	"github.com/gpsreplay/gpsreplay/pkg/output"
	"github.com/gpsreplay/gpsreplay/pkg/track"
	"github.com/gpsreplay/gpsreplay/pkg/webhook"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// clockLayout addresses a record by time of day on the track's first date.
const clockLayout = "15:04:05"

// Globals holds the root flags shared by every command.
type Globals struct {
	ConfigPath string
	LogLevel   string
	LogJSON    bool
}

// env is what a command runs with after flags are resolved.
type env struct {
	ctx        context.Context
	cfg        *config.Config
	log        zerolog.Logger
	configPath string
}

// setup loads the configuration and builds the logger. A --log-level flag
// overrides the configured level.
func (g *Globals) setup(cmd *cobra.Command) (*env, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx, g.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.LogLevel
	if g.LogLevel != "" {
		level = g.LogLevel
	}
	log, err := logging.New(cmd.ErrOrStderr(), level, g.LogJSON)
	if err != nil {
		return nil, err
	}

	return &env{ctx: ctx, cfg: cfg, log: log, configPath: g.ConfigPath}, nil
}

// newEngine creates an engine configured from env.
func (v *env) newEngine() *engine.Engine {
	return engine.New(
		engine.WithLogger(v.log),
		engine.WithDelimiter(v.cfg.Delimiter),
		engine.WithLocation(v.cfg.Location()),
		engine.WithColumns(v.cfg.Columns),
		engine.WithOutputDir(v.cfg.OutputDir),
	)
}

// load reads path into e. A file without usable records is still loaded so
// its header can be reported or exported.
func (v *env) load(e *engine.Engine, path string) (engine.LoadResult, error) {
	res, err := e.LoadFile(path)
	if errors.Is(err, engine.ErrNoUsableData) {
		v.log.Warn().Str("path", path).Int("lines", res.Stats.Lines).Msg("no usable records")
		return res, nil
	}
	return res, err
}

// expand resolves file arguments and glob patterns.
func expand(args []string) ([]string, error) {
	files, err := ingest.ExpandGlobs(args)
	if err != nil {
		return nil, fmt.Errorf("expanding file patterns: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files matched: %v", args)
	}
	return files, nil
}

// resolvePoint turns a command-line position into a record index and time.
// It accepts a record index, a time of day on the track's first date, or
// any timestamp the ingest parser understands. Times select the first
// record at or after them.
func resolvePoint(seq *track.Sequence, loc *time.Location, value string) (int, time.Time, error) {
	value = strings.TrimSpace(value)
	if seq.Empty() {
		return 0, time.Time{}, engine.ErrEmptySequence
	}

	if i, err := strconv.Atoi(value); err == nil {
		if i < 0 || i > seq.Last() {
			return 0, time.Time{}, fmt.Errorf("%w: index %d outside 0..%d", engine.ErrInvalidSeek, i, seq.Last())
		}
		return i, seq.At(i).Timestamp, nil
	}

	t, err := parsePointTime(seq, loc, value)
	if err != nil {
		return 0, time.Time{}, err
	}

	i := seq.IndexAtOrAfter(t)
	if i < 0 {
		return 0, time.Time{}, fmt.Errorf("%w: %s is after the last record", engine.ErrInvalidSeek, value)
	}
	return i, t, nil
}

// parsePointTime parses value as a time of day or a full timestamp. A time
// of day needs a record to take the date from.
func parsePointTime(seq *track.Sequence, loc *time.Location, value string) (time.Time, error) {
	if clock, err := time.Parse(clockLayout, value); err == nil {
		if seq.Empty() {
			return time.Time{}, fmt.Errorf("%w: time of day %s has no date to apply to", engine.ErrEmptySequence, value)
		}
		first := seq.At(0).Timestamp
		y, m, d := first.Date()
		return time.Date(y, m, d, clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), first.Location()), nil
	}

	t, _, err := ingest.NewTimestampParser(loc).Parse(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not an index or a time: %w", value, err)
	}
	return t, nil
}

// WebhookOptions are the per-invocation webhook flags.
type WebhookOptions struct {
	URL     string
	Token   string
	Trigger string
}

func (o *WebhookOptions) register(cmd *cobra.Command, defaultTrigger config.WebhookTrigger) {
	cmd.Flags().StringVar(&o.URL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&o.Token, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&o.Trigger, "webhook-trigger", string(defaultTrigger), "When to fire webhook (on_issues|always|never)")
}

// collectWebhooks merges config file webhooks with the CLI webhook.
func collectWebhooks(cfg *config.Config, opts *WebhookOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.URL != "" {
		trigger := config.WebhookTrigger(opts.Trigger)
		if trigger == "" {
			trigger = config.WebhookTriggerOnIssues
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.URL,
			Token:   opts.Token,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}

// sendWebhooks posts report to every configured webhook. Failures are logged
// and never fail the command.
func (v *env) sendWebhooks(opts *WebhookOptions, event webhook.Event, report any, hasIssues bool) {
	hooks := collectWebhooks(v.cfg, opts)
	if len(hooks) == 0 {
		return
	}
	webhook.NewClient().Dispatch(v.ctx, v.log, hooks, event, report, hasIssues)
}

// render writes report in the named format to the command's output.
func render(ctx context.Context, cmd *cobra.Command, format string, opts output.FormatOptions, report any) error {
	formatter, err := output.NewFormatter(format, opts)
	if err != nil {
		return err
	}
	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	return nil
}
