// Package notification delivers best-effort push notifications through an
// FCM-style HTTP relay.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/metrics"
)

// PushNotifier implements ports.Notifier by POSTing notifications to a relay
// endpoint that resolves the recipient's device token. Failures are logged
// and counted but never surfaced to the caller.
type PushNotifier struct {
	endpoint string
	apiKey   string
	http     *http.Client
	logger   *slog.Logger
	sink     *metrics.Sink
}

// NewPushNotifier creates a PushNotifier. An empty endpoint yields a notifier
// that drops every message, which keeps local setups working without a relay.
func NewPushNotifier(endpoint, apiKey string, logger *slog.Logger, sink *metrics.Sink) *PushNotifier {
	return &PushNotifier{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 5 * time.Second},
		logger:   logger.With("component", "push_notifier"),
		sink:     sink,
	}
}

type pushMessage struct {
	RecipientID string            `json:"recipientId"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	Data        map[string]string `json:"data,omitempty"`
}

// Notify hands a single notification off for delivery. The send runs on its
// own goroutine with a detached context, so a slow relay or a cancelled
// request cannot stall the transition that triggered it. The client timeout
// still bounds every send.
func (n *PushNotifier) Notify(ctx context.Context, notification ports.Notification) {
	if n.endpoint == "" {
		n.logger.Debug("push relay not configured, dropping notification",
			"recipient_id", notification.RecipientID.String(),
			"title", notification.Title)
		return
	}

	body, err := json.Marshal(pushMessage{
		RecipientID: notification.RecipientID.String(),
		Title:       notification.Title,
		Body:        notification.Body,
		Data:        notification.Data,
	})
	if err != nil {
		n.fail(notification, "marshal notification", err)
		return
	}

	go n.send(context.WithoutCancel(ctx), notification, body)
}

func (n *PushNotifier) send(ctx context.Context, notification ports.Notification, body []byte) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		n.fail(notification, "build request", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if n.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+n.apiKey)
	}

	resp, err := n.http.Do(req)
	if err != nil {
		n.fail(notification, "send notification", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		n.logger.Warn("push relay rejected notification",
			"recipient_id", notification.RecipientID.String(),
			"status", resp.StatusCode)
		n.sink.RecordNotificationFailure()
		return
	}

	n.logger.Debug("notification delivered",
		"recipient_id", notification.RecipientID.String(),
		"title", notification.Title)
}

func (n *PushNotifier) fail(notification ports.Notification, stage string, err error) {
	n.logger.Warn("failed to "+stage,
		"recipient_id", notification.RecipientID.String(),
		"error", err)
	n.sink.RecordNotificationFailure()
}
