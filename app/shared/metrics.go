package shared

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ServiceMetrics records service operation outcomes.
type ServiceMetrics interface {
	RecordOperationAttempt(operation, service string)
	RecordOperationSuccess(operation, service string)
	RecordOperationFailure(operation, service string)
	RecordOperationDuration(operation, service string, d time.Duration)
}

type noopServiceMetrics struct{}

// NewNoopServiceMetrics returns metrics that record nothing.
func NewNoopServiceMetrics() ServiceMetrics { return noopServiceMetrics{} }

func (noopServiceMetrics) RecordOperationAttempt(string, string)                 {}
func (noopServiceMetrics) RecordOperationSuccess(string, string)                 {}
func (noopServiceMetrics) RecordOperationFailure(string, string)                 {}
func (noopServiceMetrics) RecordOperationDuration(string, string, time.Duration) {}

type prometheusServiceMetrics struct {
	attempts *prometheus.CounterVec
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPrometheusServiceMetrics registers operation collectors on reg.
func NewPrometheusServiceMetrics(reg prometheus.Registerer, namespace string) ServiceMetrics {
	factory := promauto.With(reg)
	return &prometheusServiceMetrics{
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_attempts_total",
			Help:      "Service operations started.",
		}, []string{"service", "operation"}),
		outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_results_total",
			Help:      "Service operations finished, by outcome.",
		}, []string{"service", "operation", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "operation"}),
	}
}

func (m *prometheusServiceMetrics) RecordOperationAttempt(operation, service string) {
	m.attempts.WithLabelValues(service, operation).Inc()
}

func (m *prometheusServiceMetrics) RecordOperationSuccess(operation, service string) {
	m.outcomes.WithLabelValues(service, operation, "success").Inc()
}

func (m *prometheusServiceMetrics) RecordOperationFailure(operation, service string) {
	m.outcomes.WithLabelValues(service, operation, "failure").Inc()
}

func (m *prometheusServiceMetrics) RecordOperationDuration(operation, service string, d time.Duration) {
	m.duration.WithLabelValues(service, operation).Observe(d.Seconds())
}
