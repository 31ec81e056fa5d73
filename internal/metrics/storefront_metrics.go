package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// StorefrontMetrics содержит метрики активности витрины.
// Все методы безопасно вызывать на nil-указателе: метрики опциональны.
type StorefrontMetrics struct {
	ordersPlaced     prometheus.Counter
	orderValue       prometheus.Histogram
	checkoutDuration prometheus.Histogram
	duplicateSubmits prometheus.Counter

	cartMutations *prometheus.CounterVec
	navigation    *prometheus.CounterVec

	deliveriesAdvanced *prometheus.CounterVec
	deliveriesReceived prometheus.Counter

	timelineEvents prometheus.Counter
	outboxEnqueued prometheus.Counter

	activeSessions prometheus.Gauge
}

// NewStorefrontMetrics регистрирует метрики в prometheus.DefaultRegisterer.
func NewStorefrontMetrics() *StorefrontMetrics {
	return newWithRegisterer(prometheus.DefaultRegisterer)
}

// NewStorefrontMetricsWithRegisterer регистрирует метрики в переданном registerer.
func NewStorefrontMetricsWithRegisterer(registerer prometheus.Registerer) *StorefrontMetrics {
	return newWithRegisterer(registerer)
}

func newWithRegisterer(registerer prometheus.Registerer) *StorefrontMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StorefrontMetrics{
		ordersPlaced: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Total number of orders placed from the cart",
		})),
		orderValue: register(registerer, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_order_value_php",
			Help:    "Order total including shipping, in PHP",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
		})),
		checkoutDuration: register(registerer, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_checkout_duration_seconds",
			Help:    "Time spent placing an order",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		})),
		duplicateSubmits: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_checkout_duplicate_submissions_total",
			Help: "Place-order submissions answered from a previous attempt",
		})),
		cartMutations: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Cart mutations by operation",
		}, []string{"op"})),
		navigation: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_navigation_transitions_total",
			Help: "Screen transitions by source screen and action",
		}, []string{"from", "action"})),
		deliveriesAdvanced: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_deliveries_advanced_total",
			Help: "Delivery status changes by reached status",
		}, []string{"status"})),
		deliveriesReceived: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_deliveries_received_total",
			Help: "Deliveries confirmed as received by the customer",
		})),
		timelineEvents: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_timeline_events_total",
			Help: "Total number of timeline events recorded",
		})),
		outboxEnqueued: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_outbox_enqueued_total",
			Help: "Total number of events written to the outbox",
		})),
		activeSessions: register(registerer, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storefront_active_sessions",
			Help: "Number of open storefront sessions",
		})),
	}
}

// register регистрирует коллектор; при повторной регистрации возвращает уже существующий.
func register[C prometheus.Collector](registerer prometheus.Registerer, collector C) C {
	if err := registerer.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			existing, ok := already.ExistingCollector.(C)
			if !ok {
				panic(fmt.Sprintf("collector already registered with unexpected type %T", already.ExistingCollector))
			}
			return existing
		}
		panic(fmt.Sprintf("register collector: %v", err))
	}
	return collector
}

// RecordOrderPlaced фиксирует оформленный заказ и его сумму.
func (m *StorefrontMetrics) RecordOrderPlaced(total decimal.Decimal, duration time.Duration) {
	if m == nil {
		return
	}
	m.ordersPlaced.Inc()
	m.orderValue.Observe(total.InexactFloat64())
	m.checkoutDuration.Observe(duration.Seconds())
}

// RecordDuplicateSubmission увеличивает счётчик повторных нажатий "Place order".
func (m *StorefrontMetrics) RecordDuplicateSubmission() {
	if m == nil {
		return
	}
	m.duplicateSubmits.Inc()
}

// RecordCartMutation считает изменения корзины: add, change, remove, clear.
func (m *StorefrontMetrics) RecordCartMutation(op string) {
	if m == nil {
		return
	}
	m.cartMutations.WithLabelValues(op).Inc()
}

// RecordTransition считает переходы между экранами.
func (m *StorefrontMetrics) RecordTransition(from, action string) {
	if m == nil {
		return
	}
	m.navigation.WithLabelValues(from, action).Inc()
}

// RecordDeliveryAdvanced считает продвижение доставки до указанного шага.
func (m *StorefrontMetrics) RecordDeliveryAdvanced(status string) {
	if m == nil {
		return
	}
	m.deliveriesAdvanced.WithLabelValues(status).Inc()
}

// RecordDeliveryReceived увеличивает счётчик подтверждённых получений.
func (m *StorefrontMetrics) RecordDeliveryReceived() {
	if m == nil {
		return
	}
	m.deliveriesReceived.Inc()
}

// RecordTimelineEvent увеличивает счётчик событий timeline.
func (m *StorefrontMetrics) RecordTimelineEvent() {
	if m == nil {
		return
	}
	m.timelineEvents.Inc()
}

// RecordOutboxEnqueued увеличивает счётчик событий, записанных в outbox.
func (m *StorefrontMetrics) RecordOutboxEnqueued() {
	if m == nil {
		return
	}
	m.outboxEnqueued.Inc()
}

// SessionOpened и SessionClosed поддерживают gauge открытых сессий.
func (m *StorefrontMetrics) SessionOpened() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
}

func (m *StorefrontMetrics) SessionClosed() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}
