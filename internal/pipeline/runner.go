package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"support-pipeline-go/internal/classifier"
	"support-pipeline-go/internal/mailsource"
	"support-pipeline-go/internal/metrics"
	"support-pipeline-go/internal/model"
	"support-pipeline-go/internal/notifier"
	"support-pipeline-go/internal/recordstore"
)

// Lookback window bounds, in hours.
const (
	MinHoursBack = 1
	MaxHoursBack = 168
)

// Trigger labels recorded with run history.
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

var (
	// ErrInvalidWindow is returned for a lookback outside [1,168] hours,
	// before any external call is attempted.
	ErrInvalidWindow = errors.New("hours must be between 1 and 168")

	// ErrAlreadyRunning is returned when a run is requested while another
	// one is in progress. Overlapping runs against the same store would
	// duplicate records, so they are rejected rather than interleaved.
	ErrAlreadyRunning = errors.New("a pipeline run is already in progress")
)

// Bookkeeper records run history and processed-message ids in the local
// database. Satisfied by repository.Repository.
type Bookkeeper interface {
	IsMessageProcessed(messageID string) (bool, error)
	MarkMessageProcessed(messageID string) error
	RecordRun(trigger string, windowHours int, res model.RunResult) error
}

// Runner sequences the pipeline: fetch, classify and store each message,
// then summarize and notify. One run at a time.
type Runner struct {
	fetcher    mailsource.Fetcher
	classifier classifier.Classifier
	store      recordstore.Store
	notifier   notifier.Notifier
	repo       Bookkeeper // nil without a database
	metrics    *metrics.Metrics
	dedup      bool

	mu      sync.Mutex
	running bool

	lastMu sync.RWMutex
	last   *model.RunResult
}

// New creates a pipeline runner. repo may be nil when no database is
// configured; dedup must only be set with a repo present (enforced by config
// validation).
func New(f mailsource.Fetcher, c classifier.Classifier, s recordstore.Store, n notifier.Notifier, repo Bookkeeper, m *metrics.Metrics, dedup bool) *Runner {
	return &Runner{
		fetcher:    f,
		classifier: c,
		store:      s,
		notifier:   n,
		repo:       repo,
		metrics:    m,
		dedup:      dedup,
	}
}

// Run executes one full pipeline pass over the lookback window. The returned
// error covers only boundary conditions (invalid window, run in progress);
// failures of the run itself are captured in the result and never raised.
func (r *Runner) Run(ctx context.Context, hoursBack int, trigger string) (model.RunResult, error) {
	if hoursBack < MinHoursBack || hoursBack > MaxHoursBack {
		return model.RunResult{}, ErrInvalidWindow
	}

	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return model.RunResult{}, ErrAlreadyRunning
	}
	r.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	start := time.Now()
	r.metrics.RunsStarted.Inc()
	logrus.Infof("Starting pipeline run (window %dh, trigger %s)", hoursBack, trigger)

	result := r.execute(ctx, hoursBack)

	r.metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	r.finish(trigger, hoursBack, result)

	logrus.Infof("Pipeline run completed in %v: found=%d processed=%d digest=%t",
		time.Since(start), result.EmailsFound, result.EmailsProcessed, result.DigestSent)
	return result, nil
}

// execute performs the three pipeline steps.
func (r *Runner) execute(ctx context.Context, hoursBack int) model.RunResult {
	var result model.RunResult

	// Step 1: fetch. A fetch failure aborts the run; steps 2 and 3 are
	// skipped entirely.
	messages, err := r.fetcher.Fetch(ctx, time.Duration(hoursBack)*time.Hour)
	if err != nil {
		logrus.Errorf("Failed to fetch messages: %v", err)
		r.metrics.FetchFailures.Inc()
		result.Error = err.Error()
		return result
	}

	result.EmailsFound = len(messages)
	r.metrics.EmailsFetched.Add(float64(len(messages)))
	logrus.Infof("Fetched %d messages", len(messages))

	// Step 2: classify and store each message independently. A failure on
	// one message is logged and the loop continues; there is no rollback.
	for _, msg := range messages {
		if r.skipDuplicate(msg.ID) {
			continue
		}

		cls := r.classifier.Classify(ctx, msg.Subject, msg.Body)
		logrus.Infof("Classified %q as %s (%s)", model.Truncate(msg.Subject, 50), cls.Category, cls.Priority)

		if !r.store.Append(ctx, msg, cls) {
			r.metrics.AppendFailures.Inc()
			continue
		}

		result.EmailsProcessed++
		r.metrics.EmailsProcessed.Inc()
		r.markProcessed(msg.ID)
	}

	// Step 3: summarize and notify. Failure here does not touch the counts
	// computed above.
	summary := r.store.Summarize(ctx)
	result.DigestSent = r.notifier.Notify(ctx, summary)
	if result.DigestSent {
		r.metrics.DigestsSent.Inc()
	} else {
		r.metrics.DigestFailures.Inc()
	}

	return result
}

// skipDuplicate reports whether the message was already processed in an
// earlier run. Only consulted when deduplication is enabled; a bookkeeping
// read failure counts as unseen so mail is not silently dropped.
func (r *Runner) skipDuplicate(messageID string) bool {
	if !r.dedup || r.repo == nil {
		return false
	}
	seen, err := r.repo.IsMessageProcessed(messageID)
	if err != nil {
		logrus.Warnf("Failed to check processed message %s: %v", messageID, err)
		return false
	}
	if seen {
		logrus.Debugf("Message %s already processed, skipping", messageID)
	}
	return seen
}

// markProcessed records the message id for future deduplication.
func (r *Runner) markProcessed(messageID string) {
	if r.repo == nil {
		return
	}
	if err := r.repo.MarkMessageProcessed(messageID); err != nil {
		logrus.Warnf("Failed to mark message %s as processed: %v", messageID, err)
	}
}

// finish stores the last-run snapshot and, when a database is configured,
// the run-history row.
func (r *Runner) finish(trigger string, hoursBack int, result model.RunResult) {
	r.lastMu.Lock()
	snapshot := result
	r.last = &snapshot
	r.lastMu.Unlock()

	if r.repo != nil {
		if err := r.repo.RecordRun(trigger, hoursBack, result); err != nil {
			logrus.Errorf("Failed to record run history: %v", err)
		}
	}
}

// LastResult returns a copy of the most recent run's result, or nil when no
// run has completed since startup.
func (r *Runner) LastResult() *model.RunResult {
	r.lastMu.RLock()
	defer r.lastMu.RUnlock()
	if r.last == nil {
		return nil
	}
	snapshot := *r.last
	return &snapshot
}
