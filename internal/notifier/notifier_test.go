package notifier

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"support-pipeline-go/internal/config"
	"support-pipeline-go/internal/model"
)

func TestFormatDigestEmpty(t *testing.T) {
	text := FormatDigest(model.NewSummary())

	assert.Contains(t, text, "📊 *Daily Maintenance Report*")
	assert.Contains(t, text, "*Total Issues:* 0")
	assert.Contains(t, text, "*By Category:*\n• None")
	assert.Contains(t, text, "*By Priority:*\n• None")
	assert.Contains(t, text, "✅ No high priority issues")
}

func TestFormatDigestFull(t *testing.T) {
	summary := model.Summary{
		Total: 4,
		ByCategory: map[model.Category]int{
			model.CategoryNetwork:  1,
			model.CategoryHardware: 3,
		},
		ByPriority: map[model.Priority]int{
			model.PriorityLow:  1,
			model.PriorityHigh: 3,
		},
		HighPriority: []string{"switch dead", "router on fire", "core down"},
	}

	text := FormatDigest(summary)

	assert.Contains(t, text, "*Total Issues:* 4")
	// Categories are alphabetical.
	assert.Contains(t, text, "• Hardware: 3\n• Network: 1")
	// Priorities come in severity order.
	assert.Contains(t, text, "• High: 3\n• Low: 1")
	assert.Contains(t, text, "🔴 switch dead\n🔴 router on fire\n🔴 core down")
	assert.NotContains(t, text, "✅")
}

func TestFormatDigestCapsHighPriority(t *testing.T) {
	summary := model.NewSummary()
	for _, title := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		summary.Add(model.Record{Title: title, Category: model.CategoryOther, Priority: model.PriorityHigh})
	}

	text := FormatDigest(summary)
	assert.Contains(t, text, "🔴 e")
	assert.NotContains(t, text, "🔴 f")
	assert.NotContains(t, text, "🔴 g")
}

func TestNotifyPostsDigest(t *testing.T) {
	var body atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		body.Store(string(buf))
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	n := NewSlackNotifier(&config.SlackConfig{WebhookURL: server.URL})
	summary := model.NewSummary()
	summary.Add(model.Record{Title: "t", Category: model.CategoryOther, Priority: model.PriorityMedium})

	assert.True(t, n.Notify(context.Background(), summary))
	assert.Contains(t, body.Load().(string), "Daily Maintenance Report")
}

func TestNotifyNon200IsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer server.Close()

	n := NewSlackNotifier(&config.SlackConfig{WebhookURL: server.URL})
	assert.False(t, n.Notify(context.Background(), model.NewSummary()))
}

func TestNotifySkipsErrorSummary(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	n := NewSlackNotifier(&config.SlackConfig{WebhookURL: server.URL})
	summary := model.Summary{Err: "store unavailable"}

	assert.False(t, n.Notify(context.Background(), summary))
	// An error summary never reaches the webhook.
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestNotifyWithoutWebhook(t *testing.T) {
	n := NewSlackNotifier(&config.SlackConfig{})
	assert.False(t, n.Notify(context.Background(), model.NewSummary()))
}
