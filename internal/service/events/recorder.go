// Package events записывает события заказа одновременно в timeline и outbox.
package events

import (
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

const aggregateOrder = "order"

// OrderPlaced — полезная нагрузка события order.placed.
type OrderPlaced struct {
	OrderID     string      `json:"order_id"`
	Items       []OrderLine `json:"items"`
	Subtotal    string      `json:"subtotal"`
	ShippingFee string      `json:"shipping_fee"`
	Total       string      `json:"total"`
	Status      string      `json:"status"`
	PlacedAt    time.Time   `json:"placed_at"`
}

// OrderLine — позиция заказа в событии.
type OrderLine struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// DeliveryChanged — полезная нагрузка событий delivery.*.
type DeliveryChanged struct {
	OrderID  string    `json:"order_id"`
	Status   string    `json:"status"`
	Received bool      `json:"received"`
	At       time.Time `json:"at"`
}

// Recorder пишет событие в timeline и ставит сообщение в outbox.
// Ошибки записи логируются и не прерывают операцию пользователя.
type Recorder struct {
	timeline domain.TimelineRepository
	outbox   domain.OutboxRepository
	metrics  *metrics.StorefrontMetrics
	logger   *log.Entry
}

// NewRecorder создаёт Recorder. Любой из репозиториев может быть nil.
func NewRecorder(timeline domain.TimelineRepository, outbox domain.OutboxRepository, m *metrics.StorefrontMetrics, logger *log.Entry) *Recorder {
	if logger == nil {
		logger = log.WithField("component", "events")
	}
	return &Recorder{timeline: timeline, outbox: outbox, metrics: m, logger: logger}
}

// OrderPlaced фиксирует оформление заказа.
func (r *Recorder) OrderPlaced(order domain.Order) {
	lines := make([]OrderLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, OrderLine{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
		})
	}

	payload := OrderPlaced{
		OrderID:     order.ID,
		Items:       lines,
		Subtotal:    order.Subtotal.StringFixed(2),
		ShippingFee: order.ShippingFee.StringFixed(2),
		Total:       order.Total.StringFixed(2),
		Status:      string(order.Status),
		PlacedAt:    order.CreatedAt,
	}
	r.record(order.ID, domain.TimelineOrderPlaced, domain.EventOrderPlaced, "", order.CreatedAt, payload)
}

// DeliveryAdvanced фиксирует переход доставки на следующий шаг.
func (r *Recorder) DeliveryAdvanced(d domain.DeliveryOrder) {
	r.record(d.OrderID, domain.TimelineDeliveryAdvanced, domain.EventDeliveryAdvanced, d.Status.String(), d.UpdatedAt,
		DeliveryChanged{OrderID: d.OrderID, Status: d.Status.String(), Received: d.Received, At: d.UpdatedAt})
}

// OrderReceived фиксирует подтверждение получения покупателем.
func (r *Recorder) OrderReceived(d domain.DeliveryOrder) {
	r.record(d.OrderID, domain.TimelineOrderReceived, domain.EventDeliveryReceived, "", d.UpdatedAt,
		DeliveryChanged{OrderID: d.OrderID, Status: d.Status.String(), Received: d.Received, At: d.UpdatedAt})
}

func (r *Recorder) record(orderID, timelineType, eventType, reason string, occurred time.Time, payload any) {
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	entry := r.logger.WithFields(log.Fields{"order_id": orderID, "event": eventType})

	if r.timeline != nil {
		err := r.timeline.Append(domain.TimelineEvent{OrderID: orderID, Type: timelineType, Detail: reason, At: occurred})
		if err != nil {
			entry.WithError(err).Warn("append timeline event failed")
		} else {
			r.metrics.RecordTimelineEvent()
		}
	}

	if r.outbox == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		entry.WithError(err).Error("marshal event failed")
		return
	}
	msg := domain.OutboxMessage{AggregateType: aggregateOrder, AggregateID: orderID, EventType: eventType, Payload: data}
	if _, err := r.outbox.Enqueue(msg); err != nil {
		entry.WithError(err).Error("enqueue event failed")
		return
	}
	r.metrics.RecordOutboxEnqueued()
}
