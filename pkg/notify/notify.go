// Package notify implements delivery channels used by the dispatcher
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/newswatch/pkg/domain"
)

// LogDeliverer writes notifications to the log, used when no external channel is configured
type LogDeliverer struct {
	ShowBody bool
}

// Deliver logs the notification
func (l *LogDeliverer) Deliver(_ context.Context, n domain.Notification) error {
	if l.ShowBody {
		lgr.Printf("[INFO] notification %s to %s: %s\n%s", n.ID, n.RoutingKey, n.Subject, n.Body)
		return nil
	}
	lgr.Printf("[INFO] notification %s to %s: %s", n.ID, n.RoutingKey, n.Subject)
	return nil
}

// WebhookDeliverer posts notifications as JSON to an HTTP endpoint
type WebhookDeliverer struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// NewWebhookDeliverer creates a webhook channel, headers are added to every request
func NewWebhookDeliverer(url string, timeout time.Duration, headers map[string]string) *WebhookDeliverer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookDeliverer{url: url, headers: headers, client: &http.Client{Timeout: timeout}}
}

// Deliver posts the notification, any non-2xx response is an error
func (w *WebhookDeliverer) Deliver(ctx context.Context, n domain.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Task-Ref", domain.TaskRef(n.TaskID))
	if n.ID != "" {
		req.Header.Set("X-Notification-Id", n.ID)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook responded %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
