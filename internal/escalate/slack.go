package escalate

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Slack posts escalations to a Slack incoming webhook
type Slack struct {
	webhookURL string
	client     *http.Client
}

// NewSlack creates a Slack escalator with default HTTP client
func NewSlack(webhookURL string) *Slack {
	return NewSlackWithClient(webhookURL, defaultClient())
}

// NewSlackWithClient creates a Slack escalator with custom HTTP client
func NewSlackWithClient(webhookURL string, client *http.Client) *Slack {
	return &Slack{webhookURL: webhookURL, client: client}
}

// slackTextLimit is the Block Kit section text limit, less room for the
// code fence
const slackTextLimit = 2900

var slackEmoji = map[Severity]string{
	SeverityInfo:     ":information_source:",
	SeverityWarning:  ":warning:",
	SeverityCritical: ":rotating_light:",
}

// Escalate posts the escalation as a Block Kit message
func (s *Slack) Escalate(ctx context.Context, e Escalation) error {
	var fields []map[string]any
	for _, k := range e.ContextKeys() {
		fields = append(fields, map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*%s:* %s", k, e.Context[k]),
		})
	}

	blocks := []map[string]any{
		{
			"type": "section",
			"text": map[string]string{
				"type": "mrkdwn",
				"text": fmt.Sprintf("*%s*\n```%s```", e.Title, truncate(e.Message, slackTextLimit-len(e.Title))),
			},
		},
	}
	if len(fields) > 0 {
		blocks = append(blocks, map[string]any{
			"type":     "context",
			"elements": fields,
		})
	}

	return postJSON(ctx, s.client, s.webhookURL, "slack webhook", map[string]any{
		"text":   fmt.Sprintf("%s *[%s]* %s", slackEmoji[e.Severity], e.Subject, e.Title),
		"blocks": blocks,
	})
}

// truncate cuts s to at most n bytes on a line boundary when possible
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	const marker = "\n… (truncated)"
	cut := s[:max(0, n-len(marker))]
	if i := strings.LastIndexByte(cut, '\n'); i > 0 {
		cut = cut[:i]
	}
	return cut + marker
}

// Name returns "slack"
func (s *Slack) Name() string {
	return "slack"
}
