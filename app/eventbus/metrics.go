package eventbus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records event bus activity.
type Metrics interface {
	PublishRecorded(topic string, delivered int, duration time.Duration)
	PayloadDropped(topic string)
	SubscriberAdded(topic string)
	SubscriberRemoved(topic string)
}

type noopMetrics struct{}

// NewNoop returns a Metrics that records nothing.
func NewNoop() Metrics { return noopMetrics{} }

func (noopMetrics) PublishRecorded(string, int, time.Duration) {}
func (noopMetrics) PayloadDropped(string)                      {}
func (noopMetrics) SubscriberAdded(string)                     {}
func (noopMetrics) SubscriberRemoved(string)                   {}

// PrometheusMetrics implements Metrics on a prometheus registerer.
type PrometheusMetrics struct {
	published   *prometheus.CounterVec
	delivered   *prometheus.CounterVec
	dropped     *prometheus.CounterVec
	subscribers *prometheus.GaugeVec
	duration    *prometheus.HistogramVec
}

// NewPrometheusMetrics registers the event bus collectors on reg.
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		published: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eventbus",
			Name:      "published_total",
			Help:      "Number of Publish calls per topic.",
		}, []string{"topic"}),
		delivered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eventbus",
			Name:      "delivered_total",
			Help:      "Number of payloads handed to subscriber queues per topic.",
		}, []string{"topic"}),
		dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eventbus",
			Name:      "dropped_total",
			Help:      "Number of queued payloads dropped because a subscriber queue was full.",
		}, []string{"topic"}),
		subscribers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "eventbus",
			Name:      "subscribers",
			Help:      "Currently registered subscribers per topic.",
		}, []string{"topic"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "eventbus",
			Name:      "publish_duration_seconds",
			Help:      "Time spent fanning a payload out to subscriber queues.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}, []string{"topic"}),
	}
}

func (m *PrometheusMetrics) PublishRecorded(topic string, delivered int, d time.Duration) {
	m.published.WithLabelValues(topic).Inc()
	m.delivered.WithLabelValues(topic).Add(float64(delivered))
	m.duration.WithLabelValues(topic).Observe(d.Seconds())
}

func (m *PrometheusMetrics) PayloadDropped(topic string) {
	m.dropped.WithLabelValues(topic).Inc()
}

func (m *PrometheusMetrics) SubscriberAdded(topic string) {
	m.subscribers.WithLabelValues(topic).Inc()
}

func (m *PrometheusMetrics) SubscriberRemoved(topic string) {
	m.subscribers.WithLabelValues(topic).Dec()
}
