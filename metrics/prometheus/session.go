// Package prometheus implements metrics.SessionMetrics on top of
// github.com/prometheus/client_golang.
package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/whzard/punybuf/metrics"
)

// sessionMetrics is the Prometheus implementation of metrics.SessionMetrics.
type sessionMetrics struct {
	commandTotal       *prometheus.CounterVec
	commandDuration    *prometheus.HistogramVec
	commandsInFlight   *prometheus.GaugeVec
	frameBytes         *prometheus.HistogramVec
	activeConnections  prometheus.Gauge
	connectionsOpened  prometheus.Counter
	connectionsClosed  *prometheus.CounterVec
	seqOverflows       prometheus.Counter
	cancellations      prometheus.Counter
}

// NewSessionMetrics creates a new Prometheus-backed SessionMetrics instance.
//
// Returns nil if metrics are not enabled (metrics.InitRegistry(true) was
// never called), so callers can pass the result straight to a Session
// without a branch.
func NewSessionMetrics() metrics.SessionMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &sessionMetrics{
		commandTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "punybuf_commands_total",
				Help: "Total number of dispatched RPC commands by name, layer, direction, and outcome",
			},
			[]string{"name", "layer", "direction", "outcome"},
		),
		commandDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "punybuf_command_duration_milliseconds",
				Help: "Duration of RPC command dispatch in milliseconds",
				Buckets: []float64{
					0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000, 5000,
				},
			},
			[]string{"name", "direction"},
		),
		commandsInFlight: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "punybuf_commands_in_flight",
				Help: "Current number of commands being dispatched",
			},
			[]string{"name", "direction"},
		),
		frameBytes: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "punybuf_frame_bytes",
				Help: "Distribution of RPC frame body sizes in bytes",
				Buckets: []float64{
					8, 64, 256, 1024, 4096, 16384, 65536, 262144, 1048576,
				},
			},
			[]string{"class", "direction"},
		),
		activeConnections: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "punybuf_active_connections",
				Help: "Current number of active RPC connections",
			},
		),
		connectionsOpened: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "punybuf_connections_opened_total",
				Help: "Total number of accepted RPC connections",
			},
		),
		connectionsClosed: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "punybuf_connections_closed_total",
				Help: "Total number of closed RPC connections by reason",
			},
			[]string{"reason"},
		),
		seqOverflows: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "punybuf_seq_overflow_total",
				Help: "Total number of sessions that exhausted the sequence space",
			},
		),
		cancellations: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "punybuf_cancellations_total",
				Help: "Total number of locally cancelled invocations",
			},
		),
	}
}

func (m *sessionMetrics) RecordCommand(name string, layer uint32, direction string, duration time.Duration, outcome string) {
	if m == nil {
		return
	}
	layerStr := strconv.FormatUint(uint64(layer), 10)
	m.commandTotal.WithLabelValues(name, layerStr, direction, outcome).Inc()
	m.commandDuration.WithLabelValues(name, direction).Observe(duration.Seconds() * 1000)
}

func (m *sessionMetrics) RecordCommandStart(name string, direction string) {
	if m == nil {
		return
	}
	m.commandsInFlight.WithLabelValues(name, direction).Inc()
}

func (m *sessionMetrics) RecordCommandEnd(name string, direction string) {
	if m == nil {
		return
	}
	m.commandsInFlight.WithLabelValues(name, direction).Dec()
}

func (m *sessionMetrics) RecordFrameBytes(class string, direction string, bytes int) {
	if m == nil {
		return
	}
	m.frameBytes.WithLabelValues(class, direction).Observe(float64(bytes))
}

func (m *sessionMetrics) SetActiveConnections(count int32) {
	if m == nil {
		return
	}
	m.activeConnections.Set(float64(count))
}

func (m *sessionMetrics) RecordConnectionAccepted() {
	if m == nil {
		return
	}
	m.connectionsOpened.Inc()
}

func (m *sessionMetrics) RecordConnectionClosed(reason string) {
	if m == nil {
		return
	}
	m.connectionsClosed.WithLabelValues(reason).Inc()
}

func (m *sessionMetrics) RecordSeqOverflow() {
	if m == nil {
		return
	}
	m.seqOverflows.Inc()
}

func (m *sessionMetrics) RecordCancellation() {
	if m == nil {
		return
	}
	m.cancellations.Inc()
}
