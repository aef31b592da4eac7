package notifier

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"

	"support-pipeline-go/internal/config"
	"support-pipeline-go/internal/model"
)

const webhookTimeout = 10 * time.Second

// Notifier posts a digest for a summary. Returns whether the digest was
// actually delivered; misconfiguration and transport failures report false,
// never an error.
type Notifier interface {
	Notify(ctx context.Context, summary model.Summary) bool
}

// SlackNotifier posts digests to a preconfigured incoming webhook.
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewSlackNotifier creates a notifier from configuration.
func NewSlackNotifier(cfg *config.SlackConfig) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: cfg.WebhookURL,
		client:     &http.Client{Timeout: webhookTimeout},
	}
}

// Notify renders the digest and posts it. No-op when the webhook is not
// configured or the summary carries an error.
func (n *SlackNotifier) Notify(ctx context.Context, summary model.Summary) bool {
	if n.webhookURL == "" {
		logrus.Warn("Webhook not configured, skipping digest")
		return false
	}
	if summary.Err != "" {
		logrus.Warnf("Summary carries an error, skipping digest: %s", summary.Err)
		return false
	}

	msg := &slack.WebhookMessage{Text: FormatDigest(summary)}
	if err := slack.PostWebhookCustomHTTPContext(ctx, n.webhookURL, n.client, msg); err != nil {
		logrus.Errorf("Failed to post digest: %v", err)
		return false
	}

	logrus.Info("Digest sent successfully")
	return true
}
