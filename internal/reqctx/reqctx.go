// Package reqctx provides the default ports.RequestContext used outside of
// tests: a logrus-backed logger, Prometheus-backed metrics, and a plain
// http.Client fetcher. The teacher logs with bare log.Printf throughout
// internal/aggregator; this formalizes those call sites into structured
// fields using the logging library the rest of the retrieved corpus
// (Aigen6-preworker) standardizes on for services of this shape.
package reqctx

import (
	"net/http"
	"time"

	"dex-aggregator/internal/ports"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// logrusLogger adapts *logrus.Entry to ports.Logger.
type logrusLogger struct {
	entry *logrus.Entry
}

func (l *logrusLogger) WithField(key string, value interface{}) ports.Logger {
	return &logrusLogger{entry: l.entry.WithField(key, value)}
}

func (l *logrusLogger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *logrusLogger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *logrusLogger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *logrusLogger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

// PromMetrics is the default Prometheus-backed ports.Metrics.
type PromMetrics struct {
	counters *prometheus.CounterVec
	timers   *prometheus.HistogramVec
}

// NewPromMetrics registers the routing engine's counter/histogram vectors
// against the default Prometheus registry.
func NewPromMetrics() *PromMetrics {
	m := &PromMetrics{
		counters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quoted_events_total",
			Help: "Count of named pipeline events.",
		}, []string{"name", "tag"}),
		timers: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "quoted_stage_duration_seconds",
			Help: "Duration of named pipeline stages.",
		}, []string{"name"}),
	}
	prometheus.MustRegister(m.counters, m.timers)
	return m
}

func (m *PromMetrics) Count(name string, tags ...string) {
	tag := ""
	if len(tags) > 0 {
		tag = tags[0]
	}
	m.counters.WithLabelValues(name, tag).Inc()
}

func (m *PromMetrics) Timer(name string) func() {
	start := time.Now()
	return func() {
		m.timers.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}
}

// httpFetcher adapts *http.Client to ports.HTTPFetcher.
type httpFetcher struct {
	client *http.Client
}

func (f *httpFetcher) Do(req *http.Request) (*http.Response, error) {
	return f.client.Do(req)
}

// Default is the RequestContext the HTTP façade builds for each request.
type Default struct {
	logger  ports.Logger
	metrics ports.Metrics
	fetcher ports.HTTPFetcher
}

// New builds a Default RequestContext tagged with a fresh request id.
func New(metrics ports.Metrics) *Default {
	requestID := uuid.NewString()
	base := logrus.WithField("requestId", requestID)
	return &Default{
		logger:  &logrusLogger{entry: base},
		metrics: metrics,
		fetcher: &httpFetcher{client: &http.Client{Timeout: 30 * time.Second}},
	}
}

func (d *Default) Logger() ports.Logger       { return d.logger }
func (d *Default) Metrics() ports.Metrics     { return d.metrics }
func (d *Default) Fetcher() ports.HTTPFetcher { return d.fetcher }
