// Package webhook posts gpsreplay reports to HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// DeliveryHeader carries a unique id per request so receivers can drop
// retried duplicates.
const DeliveryHeader = "X-Gpsreplay-Delivery"

// maxResponseBody caps how much of a response is kept.
const maxResponseBody = 1024 * 1024

// Event names the command that produced a payload.
type Event string

const (
	EventDiagnose Event = "diagnose"
	EventExport   Event = "export"
)

// Payload is the JSON body of every webhook request.
type Payload struct {
	Event  Event     `json:"event"`
	SentAt time.Time `json:"sent_at"`
	Report any       `json:"report"`
}

// Client sends reports to webhook endpoints.
type Client struct {
	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates a new webhook client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{},
		now:        time.Now,
	}
}

// SendOptions configures a webhook request.
type SendOptions struct {
	URL     string
	Token   string        // Bearer token (optional)
	Timeout time.Duration // Request timeout (uses DefaultTimeout if zero)
}

// Response contains the result of a webhook request.
type Response struct {
	DeliveryID string
	StatusCode int
	Body       string
	Duration   time.Duration
	Error      error
}

// Success returns true if the webhook was sent successfully (2xx status).
func (r *Response) Success() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Send posts report, wrapped in a Payload, to a webhook endpoint.
func (c *Client) Send(ctx context.Context, event Event, report any, opts SendOptions) *Response {
	start := time.Now()
	resp := &Response{DeliveryID: uuid.NewString()}

	payload, err := json.Marshal(Payload{Event: event, SentAt: c.now().UTC(), Report: report})
	if err != nil {
		resp.Error = fmt.Errorf("failed to marshal report: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.URL, bytes.NewReader(payload))
	if err != nil {
		resp.Error = fmt.Errorf("failed to create request: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "gpsreplay-webhook")
	req.Header.Set(DeliveryHeader, resp.DeliveryID)
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		resp.Error = fmt.Errorf("request failed: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		resp.Error = fmt.Errorf("failed to read response: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}

	resp.StatusCode = httpResp.StatusCode
	resp.Body = string(body)
	resp.Duration = time.Since(start)

	if resp.StatusCode >= 400 {
		resp.Error = fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return resp
}
