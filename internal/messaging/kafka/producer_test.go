package kafka

import (
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
)

func TestProducer_PublishEvent(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageAndSucceed()

	producer := newProducer(mockProducer, nil)
	event := map[string]string{"order_id": "#ORD-2025-001"}

	if err := producer.PublishEvent(TopicOrderEvents, "#ORD-2025-001", event); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_Error(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	producer := newProducer(mockProducer, nil)
	if err := producer.PublishEvent(TopicOrderEvents, "#ORD-2025-001", struct{}{}); err == nil {
		t.Fatal("expected error, got nil")
	}
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_MarshalError(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mockProducer, nil)

	if err := producer.PublishEvent(TopicOrderEvents, "k", make(chan int)); err == nil {
		t.Fatal("expected marshal error")
	}
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestTopicFor(t *testing.T) {
	cases := map[string]string{
		"order.placed":      TopicOrderEvents,
		"delivery.advanced": TopicDeliveryEvents,
		"delivery.received": TopicDeliveryEvents,
		"":                  TopicOrderEvents,
	}
	for eventType, want := range cases {
		if got := TopicFor(eventType); got != want {
			t.Fatalf("TopicFor(%q) = %s, want %s", eventType, got, want)
		}
	}
}
