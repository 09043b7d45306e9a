// Package metrics tracks process-wide chat usage counters and mirrors them
// into Prometheus collectors for the exposition endpoint.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Snapshot is a consistent read-only view of the aggregate counters.
type Snapshot struct {
	TotalMessages       int64
	TotalConversations  int64
	TotalProcessingTime float64
	AverageResponseTime float64
	UptimeSeconds       float64
}

// Aggregator owns the usage counters updated once per completed turn. The
// four fields move as one unit under the mutex, so a concurrent Snapshot
// never observes a partially applied turn.
type Aggregator struct {
	mu                  sync.Mutex
	totalMessages       int64
	totalConversations  int64
	totalProcessingTime float64
	averageResponse     float64

	startTime time.Time
	registry  *prometheus.Registry

	turnsTotal         prometheus.Counter
	conversationsTotal prometheus.Counter
	turnDuration       prometheus.Histogram
}

// NewAggregator creates an aggregator with zeroed counters, its own
// Prometheus registry, and the process start time fixed to now.
func NewAggregator() *Aggregator {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	aggregator := &Aggregator{
		startTime: time.Now(),
		registry:  registry,
		turnsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "parley_chat_turns_total",
			Help: "Total number of completed chat turns",
		}),
		conversationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "parley_chat_conversations_total",
			Help: "Total number of conversations started",
		}),
		turnDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "parley_chat_turn_duration_seconds",
			Help:    "Duration of completed chat turns in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "parley_uptime_seconds",
		Help: "Seconds since process start",
	}, func() float64 {
		return time.Since(aggregator.startTime).Seconds()
	})

	return aggregator
}

// RecordTurn folds one completed turn into the counters. Failed turns must
// not be recorded.
func (a *Aggregator) RecordTurn(processingSeconds float64, newConversation bool) {
	a.mu.Lock()
	a.totalMessages++
	if newConversation {
		a.totalConversations++
	}
	a.totalProcessingTime += processingSeconds
	a.averageResponse = a.totalProcessingTime / float64(a.totalMessages)
	a.mu.Unlock()

	a.turnsTotal.Inc()
	if newConversation {
		a.conversationsTotal.Inc()
	}
	a.turnDuration.Observe(processingSeconds)
}

// Snapshot returns the current counters plus uptime. It never mutates state.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	snapshot := Snapshot{
		TotalMessages:       a.totalMessages,
		TotalConversations:  a.totalConversations,
		TotalProcessingTime: a.totalProcessingTime,
		AverageResponseTime: a.averageResponse,
	}
	a.mu.Unlock()

	snapshot.UptimeSeconds = time.Since(a.startTime).Seconds()

	return snapshot
}

// StartTime reports when the aggregator was created.
func (a *Aggregator) StartTime() time.Time {
	return a.startTime
}

// Gatherer exposes the Prometheus registry backing the mirrored collectors.
func (a *Aggregator) Gatherer() prometheus.Gatherer {
	return a.registry
}
