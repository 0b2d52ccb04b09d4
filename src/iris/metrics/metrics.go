// Package metrics holds the Prometheus instrumentation for the lookup
// pipeline.
package metrics

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	MessagesSeen       prometheus.Counter
	MessagesSkipped    *prometheus.CounterVec
	MessagesProcessed  prometheus.Counter
	RepliesPosted      prometheus.Counter
	ResolutionFailures prometheus.Counter
	FeedFaults         prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		MessagesSeen: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "iris",
			Subsystem: "consumer",
			Name:      "messages_seen_total",
			Help:      "Messages observed on the feed before any filtering",
		}),
		MessagesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "iris",
			Subsystem: "consumer",
			Name:      "messages_skipped_total",
			Help:      "Messages skipped by a pre-filter",
		}, []string{"reason"}),
		MessagesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "iris",
			Subsystem: "consumer",
			Name:      "messages_processed_total",
			Help:      "Messages that passed the filters and were marked processed",
		}),
		RepliesPosted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "iris",
			Subsystem: "consumer",
			Name:      "replies_posted_total",
			Help:      "Replies successfully posted back to the feed",
		}),
		ResolutionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "iris",
			Subsystem: "resolver",
			Name:      "failures_total",
			Help:      "Lookup terms that could not be resolved to a record",
		}),
		FeedFaults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "iris",
			Subsystem: "consumer",
			Name:      "feed_faults_total",
			Help:      "Feed-level faults that triggered a restart cycle",
		}),
	}
}

// Register registers every collector on the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) {
	reg.MustRegister(
		m.MessagesSeen,
		m.MessagesSkipped,
		m.MessagesProcessed,
		m.RepliesPosted,
		m.ResolutionFailures,
		m.FeedFaults,
	)
}
