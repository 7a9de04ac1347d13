// Package prometheus implements the metrics interfaces on top of the
// registry owned by package metrics.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/dirserve/pkg/metrics"
)

// serverMetrics is the Prometheus implementation of metrics.ServerMetrics.
type serverMetrics struct {
	commandsTotal    *prometheus.CounterVec
	commandDuration  *prometheus.HistogramVec
	bytesSent        *prometheus.CounterVec
	entriesListed    prometheus.Histogram
	activeConns      prometheus.Gauge
	connsAccepted    prometheus.Counter
	connsClosed      prometheus.Counter
	connsForceClosed prometheus.Counter
}

// NewServerMetrics creates a Prometheus-backed ServerMetrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewServerMetrics() metrics.ServerMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &serverMetrics{
		commandsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dirserve_commands_total",
				Help: "Total number of commands served by verb and outcome",
			},
			[]string{"verb", "outcome"},
		),
		commandDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "dirserve_command_duration_milliseconds",
				Help: "Time to serve a command in milliseconds",
				Buckets: []float64{
					0.1,   // listing of a small directory
					1,     // 1ms
					5,     // 5ms
					10,    // 10ms
					50,    // 50ms
					100,   // 100ms - medium files
					500,   // 500ms
					1000,  // 1s
					10000, // 10s - large files over slow links
				},
			},
			[]string{"verb"},
		),
		bytesSent: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dirserve_bytes_sent_total",
				Help: "Total bytes written to clients, frames included",
			},
			[]string{"verb"},
		),
		entriesListed: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dirserve_listing_entries",
				Help:    "Number of files returned per LIST",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		activeConns: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "dirserve_connections_active",
				Help: "Current number of client connections",
			},
		),
		connsAccepted: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "dirserve_connections_accepted_total",
				Help: "Total number of accepted client connections",
			},
		),
		connsClosed: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "dirserve_connections_closed_total",
				Help: "Total number of closed client connections",
			},
		),
		connsForceClosed: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "dirserve_connections_force_closed_total",
				Help: "Connections closed because the shutdown timeout expired",
			},
		),
	}
}

func (m *serverMetrics) RecordCommand(verb, outcome string, duration time.Duration) {
	m.commandsTotal.WithLabelValues(verb, outcome).Inc()
	m.commandDuration.WithLabelValues(verb).Observe(float64(duration.Microseconds()) / 1000.0)
}

func (m *serverMetrics) RecordBytesSent(verb string, bytes int64) {
	if bytes > 0 {
		m.bytesSent.WithLabelValues(verb).Add(float64(bytes))
	}
}

func (m *serverMetrics) RecordEntriesListed(entries int) {
	m.entriesListed.Observe(float64(entries))
}

func (m *serverMetrics) SetActiveConnections(count int32) {
	m.activeConns.Set(float64(count))
}

func (m *serverMetrics) RecordConnectionAccepted() {
	m.connsAccepted.Inc()
}

func (m *serverMetrics) RecordConnectionClosed() {
	m.connsClosed.Inc()
}

func (m *serverMetrics) RecordConnectionForceClosed() {
	m.connsForceClosed.Inc()
}
