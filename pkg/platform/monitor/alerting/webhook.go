package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/monitor"
)

// WebhookDispatcher posts alerts as JSON to a chat or incident webhook.
// The body carries a human-readable "text" line plus the full alert.
type WebhookDispatcher struct {
	url    string
	client *http.Client
}

// WebhookOption configures a WebhookDispatcher.
type WebhookOption func(*WebhookDispatcher)

// WithHTTPClient replaces the default client (5s timeout).
func WithHTTPClient(c *http.Client) WebhookOption {
	return func(d *WebhookDispatcher) {
		if c != nil {
			d.client = c
		}
	}
}

// NewWebhookDispatcher creates a dispatcher posting to url.
func NewWebhookDispatcher(url string, opts ...WebhookOption) (*WebhookDispatcher, error) {
	if url == "" {
		return nil, fmt.Errorf("webhook url is required")
	}
	d := &WebhookDispatcher{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

type webhookPayload struct {
	Text  string        `json:"text"`
	Alert monitor.Alert `json:"alert"`
}

func (d *WebhookDispatcher) Dispatch(ctx context.Context, alert monitor.Alert) error {
	body, err := json.Marshal(webhookPayload{Text: summary(alert), Alert: alert})
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func summary(a monitor.Alert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s from %s", a.Severity, a.Kind, a.SourceAddress)
	if a.ActorID != "" {
		fmt.Fprintf(&b, " (actor %s)", a.ActorID)
	}
	return b.String()
}
