// Package obs wires the Prometheus collectors used across both binaries and
// mounts the shared /healthz and /metrics HTTP surface. The teacher declares
// github.com/prometheus/client_golang in its go.mod but never imports it
// (agent/internal/metrics/metrics.go is a stub with a TODO); this package
// gives that dependency an actual home.
package obs

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AgentMetrics are the collectors recorded by internal/sender's broker sink.
type AgentMetrics struct {
	BatchesSentTotal      *prometheus.CounterVec
	BatchFlushLatencySecs prometheus.Histogram
}

// NewAgentMetrics registers and returns the agent-side collectors.
func NewAgentMetrics() *AgentMetrics {
	return &AgentMetrics{
		BatchesSentTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "isok_agent_batches_sent_total",
			Help: "Total batches handed to the broker sink, labeled by outcome.",
		}, []string{"outcome"}),
		BatchFlushLatencySecs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "isok_agent_batch_flush_latency_seconds",
			Help:    "Latency of a single broker-sink flush attempt, including retries.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// BrokerMetrics are the collectors recorded by internal/ingress.
type BrokerMetrics struct {
	BatchSendTotal    *prometheus.CounterVec
	EventsPublished   prometheus.Counter
	RateLimitedTotal  prometheus.Counter
}

// NewBrokerMetrics registers and returns the broker-side collectors.
func NewBrokerMetrics() *BrokerMetrics {
	return &BrokerMetrics{
		BatchSendTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "isok_broker_batch_send_total",
			Help: "Total BatchSend RPCs handled, labeled by outcome.",
		}, []string{"outcome"}),
		EventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "isok_broker_events_published_total",
			Help: "Total check-result events published to the durable log.",
		}),
		RateLimitedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "isok_broker_rate_limited_total",
			Help: "Total BatchSend RPCs rejected by the ingress rate limiter.",
		}),
	}
}

// HealthFunc reports current liveness; returning false renders /healthz as
// a 503.
type HealthFunc func() bool

// NewRouter builds the shared /healthz + /metrics HTTP surface mounted by
// both binaries.
func NewRouter(healthy HealthFunc) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if healthy != nil && !healthy() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("unhealthy"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// DefaultListenAddr is the shared default port for both binaries'
// observability surface.
const DefaultListenAddr = ":6060"
