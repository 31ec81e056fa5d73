package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryStatus — шаг доставки. Значения упорядочены, порядковый номер
// используется для монотонного сравнения прогресса.
type DeliveryStatus int

const (
	DeliveryOrderPlaced DeliveryStatus = iota
	DeliveryPreparing
	DeliveryOutForDelivery
	DeliveryDelivered
)

var deliveryStatusNames = [...]string{
	DeliveryOrderPlaced:    "ORDER_PLACED",
	DeliveryPreparing:      "PREPARING",
	DeliveryOutForDelivery: "OUT_FOR_DELIVERY",
	DeliveryDelivered:      "DELIVERED",
}

// DeliveryStatuses возвращает все шаги доставки в порядке следования.
func DeliveryStatuses() []DeliveryStatus {
	return []DeliveryStatus{DeliveryOrderPlaced, DeliveryPreparing, DeliveryOutForDelivery, DeliveryDelivered}
}

// Ordinal возвращает позицию шага в объявленном порядке.
func (s DeliveryStatus) Ordinal() int { return int(s) }

// Valid проверяет, что значение входит в перечисление.
func (s DeliveryStatus) Valid() bool {
	return s >= DeliveryOrderPlaced && s <= DeliveryDelivered
}

func (s DeliveryStatus) String() string {
	if !s.Valid() {
		return "UNKNOWN"
	}
	return deliveryStatusNames[s]
}

// ParseDeliveryStatus разбирает имя шага, например "OUT_FOR_DELIVERY".
func ParseDeliveryStatus(name string) (DeliveryStatus, bool) {
	for i, n := range deliveryStatusNames {
		if n == name {
			return DeliveryStatus(i), true
		}
	}
	return 0, false
}

// DeliveryOrder — заказ на экране отслеживания.
type DeliveryOrder struct {
	OrderID string
	Date    time.Time
	Items   []OrderItem
	Total   decimal.Decimal
	Status  DeliveryStatus
	// Received выставляется покупателем и только после статуса DELIVERED.
	Received  bool
	UpdatedAt time.Time
}

// CanMarkReceived сообщает, доступна ли кнопка "Order received".
func (d DeliveryOrder) CanMarkReceived() bool {
	return d.Status == DeliveryDelivered && !d.Received
}

// Clone возвращает копию с собственным срезом позиций.
func (d DeliveryOrder) Clone() DeliveryOrder {
	d.Items = append([]OrderItem(nil), d.Items...)
	return d
}

// NewDeliveryOrder создаёт запись отслеживания для только что оформленного заказа.
func NewDeliveryOrder(order Order) DeliveryOrder {
	return DeliveryOrder{
		OrderID:   order.ID,
		Date:      order.Date,
		Items:     append([]OrderItem(nil), order.Items...),
		Total:     order.Total,
		Status:    DeliveryOrderPlaced,
		UpdatedAt: order.CreatedAt,
	}
}
