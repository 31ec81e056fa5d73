package memory

import (
	"testing"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func TestOutboxRepository_EnqueueAndPull(t *testing.T) {
	repo := NewOutboxRepository()

	saved, err := repo.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   "#ORD-2025-001",
		EventType:     domain.EventOrderPlaced,
		Payload:       []byte(`{"total":"1650"}`),
	})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected generated id")
	}

	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != saved.ID {
		t.Fatalf("expected saved message pending, got %+v", pending)
	}
}

func TestOutboxRepository_FIFOAndLimit(t *testing.T) {
	repo := NewOutboxRepository()
	var ids []string
	for _, ev := range []string{domain.EventOrderPlaced, domain.EventDeliveryAdvanced, domain.EventDeliveryReceived} {
		msg, err := repo.Enqueue(domain.OutboxMessage{AggregateType: "order", EventType: ev})
		if err != nil {
			t.Fatalf("enqueue failed: %v", err)
		}
		ids = append(ids, msg.ID)
	}

	pending, _ := repo.PullPending(2)
	if len(pending) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(pending))
	}
	if pending[0].ID != ids[0] || pending[1].ID != ids[1] {
		t.Fatalf("expected enqueue order, got %s %s", pending[0].ID, pending[1].ID)
	}
}

func TestOutboxRepository_MarkSentAndFailed(t *testing.T) {
	repo := NewOutboxRepository()

	sent, _ := repo.Enqueue(domain.OutboxMessage{AggregateType: "order"})
	failed, _ := repo.Enqueue(domain.OutboxMessage{AggregateType: "order"})

	if err := repo.MarkSent(sent.ID); err != nil {
		t.Fatalf("mark sent failed: %v", err)
	}
	if err := repo.MarkFailed(failed.ID); err != nil {
		t.Fatalf("mark failed failed: %v", err)
	}
	if err := repo.MarkSent("missing"); err == nil {
		t.Fatal("expected error for unknown id")
	}

	if len(repo.AllPending()) != 0 {
		t.Fatalf("expected no pending messages")
	}
	stats, err := repo.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.PendingCount != 0 || !stats.OldestPendingAt.IsZero() {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestOutboxRepository_Stats(t *testing.T) {
	repo := NewOutboxRepository()
	first, _ := repo.Enqueue(domain.OutboxMessage{AggregateType: "order"})
	_, _ = repo.Enqueue(domain.OutboxMessage{AggregateType: "order"})

	stats, _ := repo.Stats()
	if stats.PendingCount != 2 {
		t.Fatalf("expected 2 pending, got %d", stats.PendingCount)
	}

	created := repo.records[first.ID].createdAt
	if !stats.OldestPendingAt.Equal(created) {
		t.Fatalf("expected oldest %v, got %v", created, stats.OldestPendingAt)
	}
}
