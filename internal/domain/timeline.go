package domain

import "time"

// Типы событий в истории заказа.
const (
	TimelineOrderPlaced      = "OrderPlaced"
	TimelineDeliveryAdvanced = "DeliveryAdvanced"
	TimelineOrderReceived    = "OrderReceived"
)

// TimelineEvent — запись истории заказа. Detail хранит, например, новый статус доставки.
type TimelineEvent struct {
	OrderID string
	Type    string
	Detail  string
	At      time.Time
}
