package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	RunsStarted      prometheus.Counter
	FetchFailures    prometheus.Counter
	EmailsFetched    prometheus.Counter
	EmailsProcessed  prometheus.Counter
	AppendFailures   prometheus.Counter
	DigestsSent      prometheus.Counter
	DigestFailures   prometheus.Counter
	PipelineDuration prometheus.Histogram
}

// NewMetrics creates new Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		RunsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "support_pipeline_runs_started",
			Help: "Total number of pipeline runs started",
		}),
		FetchFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "support_pipeline_fetch_failures",
			Help: "Total number of runs aborted by a mailbox fetch failure",
		}),
		EmailsFetched: promauto.NewCounter(prometheus.CounterOpts{
			Name: "support_pipeline_emails_fetched",
			Help: "Total number of emails fetched from the mailbox",
		}),
		EmailsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "support_pipeline_emails_processed",
			Help: "Total number of emails classified and stored",
		}),
		AppendFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "support_pipeline_append_failures",
			Help: "Total number of failed record store appends",
		}),
		DigestsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "support_pipeline_digests_sent",
			Help: "Total number of digests delivered to the chat channel",
		}),
		DigestFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "support_pipeline_digest_failures",
			Help: "Total number of digests that could not be delivered",
		}),
		PipelineDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "support_pipeline_run_duration_seconds",
			Help:    "Time spent on one full pipeline run",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
