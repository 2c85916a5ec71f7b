package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the engine. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	EngineOpsTotal    *prometheus.CounterVec
	EngineOpErrors    *prometheus.CounterVec
	EngineOpDuration  *prometheus.HistogramVec
	ReadinessSource   *prometheus.CounterVec
	PlanUtilization   prometheus.Histogram
	EventsConsumed    *prometheus.CounterVec
	ModelCacheLookups *prometheus.CounterVec
}

var (
	metricsOnce   sync.Once
	sharedMetrics *Metrics
)

// NewMetrics registers the collectors on the default registry once per process.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		sharedMetrics = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "intelligence_http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "route", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "intelligence_http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "route"},
			),
			EngineOpsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "intelligence_engine_operations_total",
					Help: "Estimator operations by component and operation",
				},
				[]string{"component", "operation"},
			),
			EngineOpErrors: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "intelligence_engine_operation_errors_total",
					Help: "Failed estimator operations",
				},
				[]string{"component", "operation"},
			),
			EngineOpDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "intelligence_engine_operation_duration_seconds",
					Help:    "Estimator operation latency in seconds",
					Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to 2s
				},
				[]string{"component", "operation"},
			),
			ReadinessSource: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "intelligence_readiness_predictions_total",
					Help: "Readiness predictions by model source",
				},
				[]string{"source"},
			),
			PlanUtilization: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "intelligence_plan_budget_utilization_ratio",
					Help:    "Share of the daily budget filled by a generated plan",
					Buckets: prometheus.LinearBuckets(0, 0.1, 11),
				},
			),
			EventsConsumed: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "intelligence_events_consumed_total",
					Help: "Stream events handled by subject and result",
				},
				[]string{"subject", "result"},
			),
			ModelCacheLookups: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "intelligence_model_cache_lookups_total",
					Help: "Model registry cache lookups",
				},
				[]string{"result"},
			),
		}
	})
	return sharedMetrics
}

func (m *Metrics) ObserveHTTP(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) ObserveOp(component, op string, dur time.Duration, err error) {
	if m == nil {
		return
	}
	m.EngineOpsTotal.WithLabelValues(component, op).Inc()
	m.EngineOpDuration.WithLabelValues(component, op).Observe(dur.Seconds())
	if err != nil {
		m.EngineOpErrors.WithLabelValues(component, op).Inc()
	}
}

func (m *Metrics) ObserveReadinessSource(source string) {
	if m == nil {
		return
	}
	m.ReadinessSource.WithLabelValues(source).Inc()
}

func (m *Metrics) ObservePlanUtilization(ratio float64) {
	if m == nil {
		return
	}
	m.PlanUtilization.Observe(ratio)
}

func (m *Metrics) ObserveEvent(subject, result string) {
	if m == nil {
		return
	}
	m.EventsConsumed.WithLabelValues(subject, result).Inc()
}

func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.ModelCacheLookups.WithLabelValues(result).Inc()
}
