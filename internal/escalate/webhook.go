package escalate

import (
	"context"
	"net/http"
	"time"
)

// webhookSource identifies specfix to receivers shared with other tools
const webhookSource = "specfix"

// WebhookPayload is the JSON structure sent to webhook endpoints
type WebhookPayload struct {
	Source   string            `json:"source"`
	Time     time.Time         `json:"time"`
	Severity string            `json:"severity"`
	Subject  string            `json:"subject"`
	Title    string            `json:"title"`
	Message  string            `json:"message"`
	Context  map[string]string `json:"context,omitempty"`
}

// Webhook posts escalations to an HTTP endpoint as JSON
type Webhook struct {
	url    string
	client *http.Client
	now    func() time.Time
}

// NewWebhook creates a Webhook escalator with default HTTP client
func NewWebhook(url string) *Webhook {
	return NewWebhookWithClient(url, defaultClient())
}

// NewWebhookWithClient creates a Webhook escalator with custom HTTP client
func NewWebhookWithClient(url string, client *http.Client) *Webhook {
	return &Webhook{url: url, client: client, now: time.Now}
}

// Escalate posts the escalation as JSON to the webhook URL
func (w *Webhook) Escalate(ctx context.Context, e Escalation) error {
	return postJSON(ctx, w.client, w.url, "webhook", WebhookPayload{
		Source:   webhookSource,
		Time:     w.now().UTC(),
		Severity: string(e.Severity),
		Subject:  e.Subject,
		Title:    e.Title,
		Message:  e.Message,
		Context:  e.Context,
	})
}

// Name returns "webhook"
func (w *Webhook) Name() string {
	return "webhook"
}
