// Package metrics provides Prometheus metrics for the chat-gateway service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveSessions tracks the number of live realtime sessions.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gateway_active_sessions",
			Help: "Number of currently active realtime sessions",
		},
	)

	// SessionsStarted tracks the total number of sessions started.
	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_sessions_started_total",
			Help: "Total number of realtime sessions started",
		},
	)

	// SessionsFailed tracks sessions that never reached connected.
	SessionsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_sessions_failed_total",
			Help: "Total number of session start failures",
		},
		[]string{"reason"},
	)

	// SessionStateTransitions tracks session state changes.
	SessionStateTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_session_state_transitions_total",
			Help: "Total number of session state transitions",
		},
		[]string{"from_state", "to_state"},
	)

	// AudioFramesForwarded counts PCM frames pushed to a provider transport.
	AudioFramesForwarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_audio_frames_forwarded_total",
			Help: "Total number of encoded audio frames forwarded to providers",
		},
	)

	// VideoFramesSampled counts captured-and-forwarded video frames.
	VideoFramesSampled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_video_frames_sampled_total",
			Help: "Total number of video frames sampled and forwarded",
		},
	)

	// CredentialFetchDuration tracks ephemeral credential fetch time.
	CredentialFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gateway_credential_fetch_duration_seconds",
			Help:    "Duration of ephemeral credential fetches",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	// HTTPRequests counts handled HTTP requests.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTPRequestDuration tracks HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ExportsRun counts export jobs by format and outcome.
	ExportsRun = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_exports_total",
			Help: "Total number of export jobs run",
		},
		[]string{"format", "outcome"},
	)

	// ExportDuration tracks export job duration by format.
	ExportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_export_duration_seconds",
			Help:    "Duration of export jobs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)
)

// RecordSessionStarted increments session start metrics.
func RecordSessionStarted() {
	SessionsStarted.Inc()
	ActiveSessions.Inc()
}

// RecordSessionEnded decrements the active session gauge.
func RecordSessionEnded() {
	ActiveSessions.Dec()
}

// RecordSessionFailed records a session that never reached connected.
func RecordSessionFailed(reason string) {
	SessionsFailed.WithLabelValues(reason).Inc()
}

// RecordStateTransition records a session state change.
func RecordStateTransition(fromState, toState string) {
	SessionStateTransitions.WithLabelValues(fromState, toState).Inc()
}

// RecordHTTPRequest records one handled HTTP request.
func RecordHTTPRequest(method, endpoint, status string, seconds float64) {
	HTTPRequests.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(seconds)
}

// RecordExport records an export job outcome.
func RecordExport(format, outcome string, seconds float64) {
	ExportsRun.WithLabelValues(format, outcome).Inc()
	ExportDuration.WithLabelValues(format).Observe(seconds)
}
