// Package webhook posts finished audits to a caller-supplied URL.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// EventAuditCompleted is sent once an analyze request has a report,
// whether or not the audit itself succeeded.
const EventAuditCompleted = "audit.completed"

// SignatureHeader carries the HMAC of the body when a secret is set.
const SignatureHeader = "X-Lpaudit-Signature"

// deliveryTimeout bounds a single POST.
const deliveryTimeout = 10 * time.Second

// Event is the payload sent to webhook endpoints.
type Event struct {
	Type      string `json:"type"`
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data"`
}

// NewEvent stamps an event with the current time.
func NewEvent(eventType, url string, data any) *Event {
	return &Event{
		Type:      eventType,
		URL:       url,
		Timestamp: time.Now().Unix(),
		Data:      data,
	}
}

// Sign returns the signature header value for body: "sha256=" followed by
// the hex HMAC-SHA256 under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Deliver sends a webhook event synchronously. The body is signed when
// secret is non-empty. A status of 400 or above is an error.
func Deliver(ctx context.Context, url, secret string, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "lpaudit-webhook/1.0")

	if secret != "" {
		req.Header.Set(SignatureHeader, Sign(secret, body))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// DeliverAsync sends a webhook event in the background. There is a single
// attempt; failures are logged.
func DeliverAsync(url, secret string, event *Event) {
	go func() {
		if err := Deliver(context.Background(), url, secret, event); err != nil {
			slog.Warn("webhook delivery failed",
				"url", url,
				"event", event.Type,
				"error", err,
			)
			return
		}
		slog.Info("webhook delivered", "url", url, "event", event.Type)
	}()
}
