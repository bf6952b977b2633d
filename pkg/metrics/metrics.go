// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "route", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// InferenceDuration tracks inference gateway call duration.
	InferenceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_inference_duration_seconds",
			Help:    "Inference gateway call duration",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 30, 45, 60, 90, 120},
		},
		[]string{"provider", "status"},
	)

	// InferenceTokensTotal tracks total tokens reported by the gateway.
	InferenceTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_inference_tokens_total",
			Help: "Total inference tokens processed",
		},
		[]string{"provider", "direction"},
	)

	// StoreOperations tracks session store calls.
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_store_operations_total",
			Help: "Session store operations",
		},
		[]string{"op", "status"},
	)

	// RelaySendsTotal tracks outbound replies to the messaging platform.
	RelaySendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_sends_total",
			Help: "Replies delivered to the messaging platform",
		},
		[]string{"status"},
	)

	// MessagesHandled tracks HandleMessage outcomes by terminal state.
	MessagesHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_messages_handled_total",
			Help: "Inbound messages by final state",
		},
		[]string{"outcome"},
	)

	// LogTrimmedTotal counts messages dropped from conversation logs by trimming.
	LogTrimmedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_log_trimmed_messages_total",
			Help: "Messages dropped by conversation log trimming",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, route, status string, duration float64) {
	RequestDuration.WithLabelValues(method, route, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, route, status).Inc()
}

// RecordInference records metrics for one inference gateway call.
func RecordInference(provider, status string, duration float64, tokensIn, tokensOut int) {
	InferenceDuration.WithLabelValues(provider, status).Observe(duration)
	InferenceTokensTotal.WithLabelValues(provider, "in").Add(float64(tokensIn))
	InferenceTokensTotal.WithLabelValues(provider, "out").Add(float64(tokensOut))
}

// RecordStore records a session store operation.
func RecordStore(op string, err error) {
	StoreOperations.WithLabelValues(op, statusOf(err)).Inc()
}

// RecordRelay records an outbound reply attempt.
func RecordRelay(err error) {
	RelaySendsTotal.WithLabelValues(statusOf(err)).Inc()
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
