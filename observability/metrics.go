package observability

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type operationMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

type eventMetrics struct {
	rewards   *prometheus.CounterVec
	transfers prometheus.Counter
}

var (
	operationOnce     sync.Once
	operationRegistry *operationMetrics

	eventOnce     sync.Once
	eventRegistry *eventMetrics
)

// Operations returns the lazily-initialised registry recording RPC activity.
func Operations() *operationMetrics {
	operationOnce.Do(func() {
		operationRegistry = &operationMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "eco",
				Subsystem: "rpc",
				Name:      "requests_total",
				Help:      "Total JSON-RPC requests segmented by method and outcome.",
			}, []string{"method", "outcome"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "eco",
				Subsystem: "rpc",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for JSON-RPC handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method"}),
		}
		prometheus.MustRegister(operationRegistry.requests, operationRegistry.latency)
	})
	return operationRegistry
}

// Observe records one handled request.
func (m *operationMetrics) Observe(method, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	method = normalizeLabel(method)
	m.requests.WithLabelValues(method, normalizeLabel(outcome)).Inc()
	m.latency.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Events returns the metrics registry tracking structured engine events.
func Events() *eventMetrics {
	eventOnce.Do(func() {
		eventRegistry = &eventMetrics{
			rewards: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "eco",
				Subsystem: "events",
				Name:      "rewards_total",
				Help:      "Count of reward credits segmented by action.",
			}, []string{"action"}),
			transfers: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "eco",
				Subsystem: "events",
				Name:      "transfers_total",
				Help:      "Count of successful token transfers.",
			}),
		}
		prometheus.MustRegister(eventRegistry.rewards, eventRegistry.transfers)
	})
	return eventRegistry
}

// RecordReward increments the reward counter for the supplied action tag.
func (m *eventMetrics) RecordReward(action string) {
	if m == nil {
		return
	}
	m.rewards.WithLabelValues(normalizeLabel(action)).Inc()
}

// RecordTransfer increments the transfer counter.
func (m *eventMetrics) RecordTransfer() {
	if m == nil {
		return
	}
	m.transfers.Inc()
}

func normalizeLabel(value string) string {
	normalized := strings.TrimSpace(strings.ToLower(value))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
