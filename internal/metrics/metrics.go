// Package metrics exposes Prometheus counters for the cipher service and
// HTTP server.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "enigma"

// Metrics holds every collector. A nil *Metrics records nothing, so callers
// that run without a registry (the CLI, most tests) can pass nil.
type Metrics struct {
	keystrokes     prometheus.Counter
	rejected       prometheus.Counter
	messages       *prometheus.CounterVec
	sessionsOpened prometheus.Counter
	sheetEntries   prometheus.Counter
	configReloads  *prometheus.CounterVec
	sseClients     prometheus.Gauge
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		keystrokes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "machine",
			Name:      "keystrokes_total",
			Help:      "Keys pressed through any machine",
		}),
		rejected: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "machine",
			Name:      "rejected_total",
			Help:      "Characters rejected as outside the alphabet",
		}),
		// Labels: mode (stateless, session)
		messages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "machine",
			Name:      "messages_total",
			Help:      "Messages enciphered by mode",
		}, []string{"mode"}),
		sessionsOpened: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "opened_total",
			Help:      "Cipher sessions opened",
		}),
		sheetEntries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sheets",
			Name:      "entries_imported_total",
			Help:      "Key sheet entries imported",
		}),
		// Labels: status (success, error)
		configReloads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "config",
			Name:      "reloads_total",
			Help:      "Configuration reloads by status",
		}, []string{"status"}),
		sseClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "clients",
			Help:      "Connected event stream clients",
		}),
		// Labels: method, route, code
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code",
		}, []string{"method", "route", "code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "route"}),
	}
}

// Keys records accepted and rejected keystrokes.
func (m *Metrics) Keys(accepted, rejected int) {
	if m == nil {
		return
	}
	m.keystrokes.Add(float64(accepted))
	m.rejected.Add(float64(rejected))
}

// Message records one enciphered message.
func (m *Metrics) Message(mode string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(mode).Inc()
}

// SessionOpened records a new session.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessionsOpened.Inc()
}

// SheetImported records the entries of an imported key sheet.
func (m *Metrics) SheetImported(entries int) {
	if m == nil {
		return
	}
	m.sheetEntries.Add(float64(entries))
}

// ConfigReload records a reload attempt.
func (m *Metrics) ConfigReload(err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.configReloads.WithLabelValues(status).Inc()
}

// ClientConnected tracks event stream clients; pass -1 on disconnect.
func (m *Metrics) ClientConnected(delta int) {
	if m == nil {
		return
	}
	m.sseClients.Add(float64(delta))
}

// Request records one served HTTP request.
func (m *Metrics) Request(method, route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
