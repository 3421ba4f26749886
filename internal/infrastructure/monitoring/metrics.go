package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the broker.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Broker metrics
	Registrations      *prometheus.CounterVec
	Lookups            *prometheus.CounterVec
	SessionsGranted    prometheus.Counter
	SessionsActive     prometheus.Gauge
	CapacityRejections prometheus.Counter
	ServicesRegistered prometheus.Gauge

	// Dispatch metrics
	Commands *prometheus.CounterVec

	// Transport metrics
	WSConnections prometheus.Gauge
	WSFrames      *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates and registers the broker's metric set.
func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),

		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sm_http_requests_total",
			Help: "Total HTTP requests by method, path, and status",
		}, []string{"method", "path", "status"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sm_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),

		Registrations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sm_registrations_total",
			Help: "Service registration attempts by outcome",
		}, []string{"outcome"}),
		Lookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sm_lookups_total",
			Help: "Service lookups by outcome",
		}, []string{"outcome"}),
		SessionsGranted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sm_sessions_granted_total",
			Help: "Sessions handed out through GetService",
		}),
		SessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "sm_sessions_active",
			Help: "Currently open sessions across all ports",
		}),
		CapacityRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sm_capacity_rejections_total",
			Help: "Connect attempts rejected because the port was full",
		}),
		ServicesRegistered: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "sm_services_registered",
			Help: "Names currently present in the service table",
		}),

		Commands: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sm_commands_total",
			Help: "Dispatched wire commands by service, command, and outcome",
		}, []string{"service", "command", "outcome"}),

		WSConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "sm_ws_connections",
			Help: "Active WebSocket process links",
		}),
		WSFrames: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sm_ws_frames_total",
			Help: "WebSocket frames by direction",
		}, []string{"direction"}),

		Uptime: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "sm_uptime_seconds",
			Help: "Daemon uptime in seconds",
		}),
	}
}

// RecordHTTPRequest records one completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCommand records one dispatched wire command.
func (m *Metrics) RecordCommand(service, command, outcome string) {
	m.Commands.WithLabelValues(service, command, outcome).Inc()
}

// UpdateUptime refreshes the uptime gauge.
func (m *Metrics) UpdateUptime() {
	m.Uptime.Set(time.Since(m.startTime).Seconds())
}
