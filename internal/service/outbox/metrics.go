package outbox

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type workerMetrics struct {
	attempts     *prometheus.CounterVec
	pending      prometheus.Gauge
	oldestAgeSec prometheus.Gauge
}

// newWorkerMetrics регистрирует метрики воркера; nil registerer отключает регистрацию.
func newWorkerMetrics(registerer prometheus.Registerer) *workerMetrics {
	factory := promauto.With(registerer)
	return &workerMetrics{
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_outbox_publish_attempts_total",
			Help: "Outbox publish attempts grouped by result.",
		}, []string{"result"}),
		pending: factory.NewGauge(prometheus.GaugeOpts{
			Name: "storefront_outbox_pending_records",
			Help: "Current number of pending storefront events in the outbox.",
		}),
		oldestAgeSec: factory.NewGauge(prometheus.GaugeOpts{
			Name: "storefront_outbox_oldest_pending_age_seconds",
			Help: "Age in seconds of the oldest pending outbox record.",
		}),
	}
}
