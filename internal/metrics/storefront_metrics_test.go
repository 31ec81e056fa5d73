package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
)

func counterValue(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()

	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	close(ch)

	var total float64
	for metric := range ch {
		var m dto.Metric
		if err := metric.Write(&m); err != nil {
			t.Fatalf("write metric: %v", err)
		}
		switch {
		case m.Counter != nil:
			total += m.Counter.GetValue()
		case m.Gauge != nil:
			total += m.Gauge.GetValue()
		case m.Histogram != nil:
			total += float64(m.Histogram.GetSampleCount())
		}
	}
	return total
}

func TestNewStorefrontMetrics_RegistersAll(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newWithRegisterer(reg)

	m.RecordOrderPlaced(decimal.NewFromInt(1650), 3*time.Millisecond)
	m.RecordCartMutation("add")
	m.RecordTransition("home", "open-cart")
	m.RecordDeliveryAdvanced("PREPARING")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"storefront_orders_placed_total",
		"storefront_order_value_php",
		"storefront_checkout_duration_seconds",
		"storefront_cart_mutations_total",
		"storefront_navigation_transitions_total",
		"storefront_deliveries_advanced_total",
		"storefront_active_sessions",
	} {
		if !names[want] {
			t.Fatalf("metric %s is not registered", want)
		}
	}
}

func TestRecordOrderPlaced(t *testing.T) {
	m := newWithRegisterer(prometheus.NewRegistry())

	m.RecordOrderPlaced(decimal.NewFromInt(1650), time.Millisecond)
	m.RecordOrderPlaced(decimal.NewFromInt(60), time.Millisecond)

	if got := counterValue(t, m.ordersPlaced); got != 2 {
		t.Fatalf("expected 2 orders, got %v", got)
	}
	if got := counterValue(t, m.orderValue); got != 2 {
		t.Fatalf("expected 2 observations, got %v", got)
	}
}

func TestCartAndNavigationCounters(t *testing.T) {
	m := newWithRegisterer(prometheus.NewRegistry())

	m.RecordCartMutation("add")
	m.RecordCartMutation("add")
	m.RecordCartMutation("remove")
	m.RecordTransition("home", "open-cart")

	if got := counterValue(t, m.cartMutations.WithLabelValues("add")); got != 2 {
		t.Fatalf("expected 2 add mutations, got %v", got)
	}
	if got := counterValue(t, m.cartMutations); got != 3 {
		t.Fatalf("expected 3 mutations total, got %v", got)
	}
	if got := counterValue(t, m.navigation.WithLabelValues("home", "open-cart")); got != 1 {
		t.Fatalf("expected 1 transition, got %v", got)
	}
}

func TestSessionsGauge(t *testing.T) {
	m := newWithRegisterer(prometheus.NewRegistry())

	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()

	if got := counterValue(t, m.activeSessions); got != 1 {
		t.Fatalf("expected 1 active session, got %v", got)
	}
}

func TestRegisterTwiceReturnsExisting(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := newWithRegisterer(reg)
	second := newWithRegisterer(reg)

	first.RecordDeliveryReceived()
	second.RecordDeliveryReceived()

	if got := counterValue(t, first.deliveriesReceived); got != 2 {
		t.Fatalf("expected shared counter value 2, got %v", got)
	}
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *StorefrontMetrics

	m.RecordOrderPlaced(decimal.NewFromInt(1), time.Second)
	m.RecordDuplicateSubmission()
	m.RecordCartMutation("add")
	m.RecordTransition("home", "open-cart")
	m.RecordDeliveryAdvanced("DELIVERED")
	m.RecordDeliveryReceived()
	m.RecordTimelineEvent()
	m.RecordOutboxEnqueued()
	m.SessionOpened()
	m.SessionClosed()
}
