package kafka

import (
	"errors"
	"time"

	"github.com/IBM/sarama"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

var errPublisherNotInitialized = errors.New("kafka outbox publisher is not initialized")

// OutboxTopicPublisher публикует outbox-сообщения витрины в Kafka.
// Пустой topic означает маршрутизацию по типу события (см. TopicFor).
type OutboxTopicPublisher struct {
	producer *Producer
	topic    string
	dlq      bool
}

// NewOutboxPublisher создаёт publisher для outbox worker.
func NewOutboxPublisher(producer *Producer, topic string) *OutboxTopicPublisher {
	return &OutboxTopicPublisher{producer: producer, topic: topic}
}

// NewDLQPublisher создаёт publisher для сообщений, исчерпавших повторы.
func NewDLQPublisher(producer *Producer) *OutboxTopicPublisher {
	return &OutboxTopicPublisher{producer: producer, topic: TopicDeadLetterQueue, dlq: true}
}

func (p *OutboxTopicPublisher) Publish(event domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return errPublisherNotInitialized
	}

	key := event.AggregateID
	if key == "" {
		key = event.ID
	}

	topic := p.topic
	if topic == "" {
		topic = TopicFor(event.EventType)
	}

	headers := []sarama.RecordHeader{
		{Key: []byte(HeaderEventType), Value: []byte(event.EventType)},
	}
	if p.dlq {
		headers = append(headers,
			sarama.RecordHeader{Key: []byte(HeaderOriginalTopic), Value: []byte(TopicFor(event.EventType))},
			sarama.RecordHeader{Key: []byte(HeaderFailedAt), Value: []byte(time.Now().UTC().Format(time.RFC3339Nano))},
		)
	}

	return p.producer.PublishEvent(topic, key, NewEnvelope(event), headers...)
}

var _ domain.OutboxPublisher = (*OutboxTopicPublisher)(nil)
