package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

func TestIdempotencyRepository_Lifecycle(t *testing.T) {
	repo := memory.NewIdempotencyRepository()

	created, err := repo.CreateProcessing("key-1", "hash-1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("create processing failed: %v", err)
	}
	if created.Status != domain.IdempotencyStatusProcessing {
		t.Fatalf("expected processing, got %s", created.Status)
	}

	if err := repo.MarkDone("key-1", []byte(`{"id":"#ORD-2025-001"}`)); err != nil {
		t.Fatalf("mark done failed: %v", err)
	}

	stored, err := repo.Get("key-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Status != domain.IdempotencyStatusDone {
		t.Fatalf("expected done, got %s", stored.Status)
	}
	if string(stored.Response) != `{"id":"#ORD-2025-001"}` {
		t.Fatalf("unexpected response %q", stored.Response)
	}
}

func TestIdempotencyRepository_Conflicts(t *testing.T) {
	repo := memory.NewIdempotencyRepository()
	if _, err := repo.CreateProcessing("key-1", "hash-1", time.Time{}); err != nil {
		t.Fatalf("create processing failed: %v", err)
	}

	_, err := repo.CreateProcessing("key-1", "hash-1", time.Time{})
	if !errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists) {
		t.Fatalf("expected ErrIdempotencyKeyAlreadyExists, got %v", err)
	}

	_, err = repo.CreateProcessing("key-1", "hash-2", time.Time{})
	if !errors.Is(err, domain.ErrIdempotencyHashMismatch) {
		t.Fatalf("expected ErrIdempotencyHashMismatch, got %v", err)
	}
}

func TestIdempotencyRepository_Validation(t *testing.T) {
	repo := memory.NewIdempotencyRepository()

	if _, err := repo.CreateProcessing(" ", "hash", time.Time{}); !errors.Is(err, domain.ErrIdempotencyKeyRequired) {
		t.Fatalf("expected ErrIdempotencyKeyRequired, got %v", err)
	}
	if _, err := repo.CreateProcessing("key", "", time.Time{}); !errors.Is(err, domain.ErrIdempotencyRequestHashRequired) {
		t.Fatalf("expected ErrIdempotencyRequestHashRequired, got %v", err)
	}
	if err := repo.MarkFailed("missing", nil); !errors.Is(err, domain.ErrIdempotencyKeyNotFound) {
		t.Fatalf("expected ErrIdempotencyKeyNotFound, got %v", err)
	}
}

func TestIdempotencyRepository_DeleteExpired(t *testing.T) {
	repo := memory.NewIdempotencyRepository()
	now := time.Now().UTC()

	for _, key := range []string{"old-1", "old-2", "old-3"} {
		if _, err := repo.CreateProcessing(key, "hash", now.Add(-time.Minute)); err != nil {
			t.Fatalf("create %s failed: %v", key, err)
		}
	}
	if _, err := repo.CreateProcessing("fresh", "hash", now.Add(time.Hour)); err != nil {
		t.Fatalf("create fresh failed: %v", err)
	}

	removed, err := repo.DeleteExpired(now, 2)
	if err != nil {
		t.Fatalf("delete expired failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed with limit, got %d", removed)
	}

	removed, err = repo.DeleteExpired(now, 0)
	if err != nil {
		t.Fatalf("delete expired failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	if _, err := repo.Get("fresh"); err != nil {
		t.Fatalf("fresh key must survive cleanup: %v", err)
	}
}
