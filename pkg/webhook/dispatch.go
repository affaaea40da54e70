package webhook

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/gpsreplay/gpsreplay/pkg/config"
)

// ShouldFire reports whether a webhook with trigger fires for a report.
// Unknown triggers behave like on_issues.
func ShouldFire(trigger config.WebhookTrigger, hasIssues bool) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	default:
		return hasIssues
	}
}

// Dispatch sends report to every hook whose trigger fires. Failures are
// logged and returned but never stop the remaining hooks.
func (c *Client) Dispatch(ctx context.Context, log zerolog.Logger, hooks []config.WebhookConfig,
	event Event, report any, hasIssues bool) []*Response {
	var responses []*Response

	for _, wh := range hooks {
		if !ShouldFire(wh.Trigger, hasIssues) {
			continue
		}

		resp := c.Send(ctx, event, report, SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
		})
		responses = append(responses, resp)

		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		if resp.Success() {
			log.Info().Str("webhook", name).Str("delivery", resp.DeliveryID).
				Int("status", resp.StatusCode).Dur("duration", resp.Duration).Msg("webhook sent")
		} else {
			log.Warn().Err(resp.Error).Str("webhook", name).Str("delivery", resp.DeliveryID).Msg("webhook failed")
		}
	}

	return responses
}
