package metrics

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the API process.
// Each instance owns its registry so tests can build as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	webhookEventsTotal *prometheus.CounterVec

	ingestTotal    *prometheus.CounterVec
	ingestDuration *prometheus.HistogramVec

	uploadsTotal *prometheus.CounterVec
}

func New(serviceName string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	labels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		registry: reg,
		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "http_requests_total",
				Help:        "Total number of HTTP requests",
				ConstLabels: labels,
			},
			[]string{"method", "endpoint", "status"},
		),
		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "http_request_duration_seconds",
				Help:        "HTTP request latency in seconds",
				ConstLabels: labels,
				Buckets:     prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		webhookEventsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "call_webhook_events_total",
				Help:        "Telephony webhook events by kind, reported status and resulting action",
				ConstLabels: labels,
			},
			[]string{"kind", "status", "action"},
		),
		ingestTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "recording_ingest_total",
				Help:        "Recording ingest runs by outcome stage (ok or the failing stage)",
				ConstLabels: labels,
			},
			[]string{"stage"},
		),
		ingestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "recording_ingest_duration_seconds",
				Help:        "Recording ingest latency in seconds",
				ConstLabels: labels,
				Buckets:     []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"stage"},
		),
		uploadsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "recording_uploads_total",
				Help:        "Manual recording uploads by result",
				ConstLabels: labels,
			},
			[]string{"result"},
		),
	}
}

// RegisterDB exposes database/sql pool stats.
func (m *Metrics) RegisterDB(db *sql.DB, name string) {
	m.registry.MustRegister(collectors.NewDBStatsCollector(db, name))
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
	return gin.WrapH(h)
}

// Middleware records request count and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) RecordWebhookEvent(kind, status, action string) {
	m.webhookEventsTotal.WithLabelValues(kind, status, action).Inc()
}

// RecordIngest counts one pipeline run. stage is "ok" on success.
func (m *Metrics) RecordIngest(stage string, d time.Duration) {
	m.ingestTotal.WithLabelValues(stage).Inc()
	m.ingestDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) RecordUpload(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	m.uploadsTotal.WithLabelValues(result).Inc()
}

