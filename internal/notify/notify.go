// Package notify delivers high-value message notifications to external
// webhooks. Sinks are fire-and-forget: the pipeline logs failures and moves
// on.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/PranavAK3704/OneBox/internal/models"
)

// sendTimeout bounds one notification delivery attempt.
const sendTimeout = 10 * time.Second

// SlackNotifier posts a formatted message to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
}

func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: sendTimeout},
	}
}

func (n *SlackNotifier) Send(ctx context.Context, doc *models.EmailDocument) error {
	payload := map[string]string{
		"text": fmt.Sprintf("*Interested email received!*\n\n*From:* %s\n*Subject:* %s\n*Account:* %s",
			doc.From, doc.Subject, doc.AccountID),
	}
	return postJSON(ctx, n.client, n.webhookURL, payload)
}

// WebhookNotifier posts a structured event to a generic webhook endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: sendTimeout},
	}
}

func (n *WebhookNotifier) Send(ctx context.Context, doc *models.EmailDocument) error {
	payload := map[string]any{
		"event":      "interested_email",
		"deliveryId": uuid.NewString(),
		"email": map[string]any{
			"from":      doc.From,
			"subject":   doc.Subject,
			"accountId": doc.AccountID,
			"date":      doc.Date,
		},
	}
	return postJSON(ctx, n.client, n.url, payload)
}

func postJSON(ctx context.Context, client *http.Client, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
