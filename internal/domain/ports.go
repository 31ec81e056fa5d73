package domain

import "time"

// CatalogRepository отдаёт товары витрины.
type CatalogRepository interface {
	ListProducts() ([]Product, error)
	// GetProduct возвращает товар или ErrProductNotFound.
	GetProduct(id string) (Product, error)
}

// OrderRepository хранит историю заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ. Возвращает ErrOrderAlreadyExists, если ID занят.
	Create(order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound, если его нет.
	Get(id string) (Order, error)
	// List возвращает заказы от новых к старым.
	List() ([]Order, error)
}

// DeliveryRepository хранит состояние отслеживания доставки.
type DeliveryRepository interface {
	Create(delivery DeliveryOrder) error
	// Get возвращает запись или ErrDeliveryNotFound.
	Get(orderID string) (DeliveryOrder, error)
	List() ([]DeliveryOrder, error)
	Save(delivery DeliveryOrder) error
}

// TimelineRepository хранит события жизненного цикла заказа.
type TimelineRepository interface {
	Append(event TimelineEvent) error
	List(orderID string) ([]TimelineEvent, error)
}

// IdempotencyRepository хранит состояние оформления заказа по ключу checkout-сессии.
type IdempotencyRepository interface {
	CreateProcessing(key, requestHash string, ttlAt time.Time) (IdempotencyRecord, error)
	Get(key string) (IdempotencyRecord, error)
	MarkDone(key string, response []byte) error
	MarkFailed(key string, response []byte) error
	DeleteExpired(before time.Time, limit int) (int, error)
}

// OutboxPublisher публикует события из outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// Типы событий outbox.
const (
	EventOrderPlaced      = "order.placed"
	EventDeliveryAdvanced = "delivery.advanced"
	EventDeliveryReceived = "delivery.received"
)

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
