package kafka

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Topics витрины.
const (
	TopicOrderEvents     = "storefront.order.events"
	TopicDeliveryEvents  = "storefront.delivery.events"
	TopicDeadLetterQueue = "storefront.dlq"
)

// Kafka headers.
const (
	HeaderEventType     = "x-event-type"
	HeaderOriginalTopic = "x-original-topic"
	HeaderFailedAt      = "x-failed-at"
)

// Envelope — сообщение, которое витрина публикует в Kafka.
type Envelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	PublishedAt   time.Time       `json:"published_at"`
}

// NewEnvelope оборачивает outbox-сообщение.
func NewEnvelope(msg domain.OutboxMessage) Envelope {
	env := Envelope{
		ID:            msg.ID,
		AggregateType: msg.AggregateType,
		AggregateID:   msg.AggregateID,
		EventType:     msg.EventType,
		PublishedAt:   time.Now().UTC(),
	}
	if len(msg.Payload) > 0 {
		env.Payload = json.RawMessage(msg.Payload)
	}
	return env
}

// TopicFor выбирает topic по префиксу типа события: order.* и delivery.*.
func TopicFor(eventType string) string {
	if strings.HasPrefix(eventType, "delivery.") {
		return TopicDeliveryEvents
	}
	return TopicOrderEvents
}
