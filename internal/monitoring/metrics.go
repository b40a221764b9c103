package monitoring

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spacesedan/commentscope/internal/errs"
	"github.com/spacesedan/commentscope/internal/models"
)

const METRICS_NAMESPACE = "commentscope"

// Metrics owns a private registry so tests and multiple servers never collide.
type Metrics struct {
	Registry *prometheus.Registry

	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	AnalysesTotal     *prometheus.CounterVec
	StepDuration      *prometheus.HistogramVec
	UpstreamFailures  *prometheus.CounterVec
	CommentsFetched   prometheus.Histogram
	ClassifierHealthy prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		HttpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: METRICS_NAMESPACE,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HttpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: METRICS_NAMESPACE,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		AnalysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: METRICS_NAMESPACE,
				Name:      "analysis_steps_total",
				Help:      "Pipeline steps by outcome",
			},
			[]string{"step", "status"},
		),
		StepDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: METRICS_NAMESPACE,
				Name:      "analysis_step_duration_seconds",
				Help:      "Pipeline step duration in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"step"},
		),
		UpstreamFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: METRICS_NAMESPACE,
				Name:      "upstream_failures_total",
				Help:      "Failed external calls by service and kind",
			},
			[]string{"service", "kind"},
		),
		CommentsFetched: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: METRICS_NAMESPACE,
				Name:      "comments_fetched",
				Help:      "Comments fetched per analysis",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 11),
			},
		),
		ClassifierHealthy: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: METRICS_NAMESPACE,
				Name:      "classifier_healthy",
				Help:      "1 when the sentiment classifier answered its last health check",
			},
		),
	}
}

// Handler serves the private registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// ObserveStep is safe on a nil receiver.
func (m *Metrics) ObserveStep(step string, report models.StepReport, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(step, string(report.Status)).Inc()
	m.StepDuration.WithLabelValues(step).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveComments(n int) {
	if m == nil {
		return
	}
	m.CommentsFetched.Observe(float64(n))
}

// ObserveFailure counts err against its upstream service, if it came from one.
func (m *Metrics) ObserveFailure(err error) {
	if m == nil || err == nil {
		return
	}
	ue, ok := errs.Upstream(err)
	if !ok {
		return
	}
	kind := "unavailable"
	if errors.Is(ue.Kind, errs.ErrUpstreamMalformed) {
		kind = "malformed"
	}
	m.UpstreamFailures.WithLabelValues(ue.Service, kind).Inc()
}

func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HttpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HttpRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
