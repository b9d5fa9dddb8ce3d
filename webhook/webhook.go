// Package webhook posts finished analysis contracts to configured Supabase
// endpoints. Delivery is best-effort: failures are logged, never surfaced
// to the request path.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MBGrao/ecommerce-product-intelligence-api/config"
)

// Notifier delivers contracts to the partial and full result endpoints.
type Notifier struct {
	cfg    config.WebhookConfig
	client *http.Client
}

// NewNotifier creates a Notifier.
func NewNotifier(cfg config.WebhookConfig) *Notifier {
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// PartialConfigured reports whether a partial-result endpoint is set.
func (n *Notifier) PartialConfigured() bool { return n.cfg.PartialURL != "" }

// FullConfigured reports whether a full-result endpoint is set.
func (n *Notifier) FullConfigured() bool { return n.cfg.FullURL != "" }

// Deliver posts one payload synchronously.
func (n *Notifier) Deliver(ctx context.Context, url string, payload any, requestID string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhook: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Product-Intel-Webhook/1.0")
	if n.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+n.cfg.APIKey)
		req.Header.Set("apikey", n.cfg.APIKey)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// DeliverPartialAsync fires the partial-result webhook in the background.
func (n *Notifier) DeliverPartialAsync(payload any, requestID string) {
	n.deliverAsync(n.cfg.PartialURL, payload, requestID)
}

// DeliverFullAsync fires the full-result webhook in the background.
func (n *Notifier) DeliverFullAsync(payload any, requestID string) {
	n.deliverAsync(n.cfg.FullURL, payload, requestID)
}

// deliverAsync retries on the schedule 1s, 5s, 30s before giving up.
func (n *Notifier) deliverAsync(url string, payload any, requestID string) {
	if url == "" {
		return
	}
	go func() {
		delays := []time.Duration{0, 1 * time.Second, 5 * time.Second, 30 * time.Second}
		for attempt, delay := range delays {
			if delay > 0 {
				time.Sleep(delay)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := n.Deliver(ctx, url, payload, requestID)
			cancel()
			if err == nil {
				slog.Info("webhook delivered",
					"url", url,
					"request_id", requestID,
					"attempt", attempt+1,
				)
				return
			}
			slog.Warn("webhook delivery failed",
				"url", url,
				"request_id", requestID,
				"attempt", attempt+1,
				"error", err,
			)
		}
		slog.Error("webhook delivery exhausted all retries",
			"url", url,
			"request_id", requestID,
		)
	}()
}
