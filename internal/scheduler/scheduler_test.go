package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"support-pipeline-go/internal/classifier"
	"support-pipeline-go/internal/config"
	"support-pipeline-go/internal/metrics"
	"support-pipeline-go/internal/model"
	"support-pipeline-go/internal/pipeline"
)

var testMetrics = metrics.NewMetrics()

type noopFetcher struct{}

func (noopFetcher) Fetch(ctx context.Context, since time.Duration) ([]model.Message, error) {
	return nil, nil
}
func (noopFetcher) Close() error { return nil }

type noopClassifier struct{}

func (noopClassifier) Classify(ctx context.Context, subject, body string) model.Classification {
	return classifier.Fallback(subject)
}

type noopStore struct{}

func (noopStore) Append(ctx context.Context, msg model.Message, cls model.Classification) bool {
	return true
}
func (noopStore) Summarize(ctx context.Context) model.Summary { return model.NewSummary() }

type noopNotifier struct{}

func (noopNotifier) Notify(ctx context.Context, summary model.Summary) bool { return true }

func testScheduler() *Scheduler {
	runner := pipeline.New(noopFetcher{}, noopClassifier{}, noopStore{}, noopNotifier{}, nil, testMetrics, false)
	cfg := &config.SchedulerConfig{Enabled: true, CronSpec: "0 0 9 * * *"}
	return NewScheduler(cfg, 24, runner)
}

func TestSchedulerStartStop(t *testing.T) {
	s := testScheduler()

	assert.False(t, s.IsRunning())
	assert.True(t, s.NextRun().IsZero())

	assert.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.False(t, s.NextRun().IsZero())

	// Starting twice is an error.
	assert.Error(t, s.Start())

	assert.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())

	// Stopping a stopped scheduler is a no-op.
	assert.NoError(t, s.Stop())
}

func TestSchedulerRestart(t *testing.T) {
	s := testScheduler()

	assert.NoError(t, s.Start())
	assert.NoError(t, s.Stop())

	// The scheduler can be started again after a stop.
	assert.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.NoError(t, s.Stop())
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	runner := pipeline.New(noopFetcher{}, noopClassifier{}, noopStore{}, noopNotifier{}, nil, testMetrics, false)
	s := NewScheduler(&config.SchedulerConfig{Enabled: true, CronSpec: "not a cron spec"}, 24, runner)

	assert.Error(t, s.Start())
	assert.False(t, s.IsRunning())
}
