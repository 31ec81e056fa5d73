package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

func TestInitRuntimeDependencies_Memory(t *testing.T) {
	t.Parallel()

	deps, err := initRuntimeDependencies(context.Background(), Config{
		StorageDriver: StorageDriverMemory,
	}, log.WithField("test", "memory-storage"))
	if err != nil {
		t.Fatalf("initRuntimeDependencies(memory) failed: %v", err)
	}
	if deps.catalog == nil || deps.orders == nil || deps.deliveries == nil ||
		deps.timeline == nil || deps.outbox == nil || deps.idempotency == nil {
		t.Fatalf("memory dependencies must be initialized: %+v", deps)
	}
	if deps.storageChecker != nil || deps.closeFn != nil {
		t.Fatal("memory storage has no checker and nothing to close")
	}

	orders, err := deps.orders.List()
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("expected empty history without seeding, got %d", len(orders))
	}
}

func TestInitRuntimeDependencies_MemorySeeded(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	deps, err := initRuntimeDependencies(context.Background(), cfg, log.WithField("test", "memory-seeded"))
	if err != nil {
		t.Fatalf("initRuntimeDependencies failed: %v", err)
	}

	orders, err := deps.orders.List()
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != len(memory.SampleOrders()) {
		t.Fatalf("expected %d sample orders, got %d", len(memory.SampleOrders()), len(orders))
	}

	deliveries, err := deps.deliveries.List()
	if err != nil {
		t.Fatalf("list deliveries: %v", err)
	}
	if len(deliveries) != len(memory.SampleDeliveries()) {
		t.Fatalf("expected %d sample deliveries, got %d", len(memory.SampleDeliveries()), len(deliveries))
	}

	products, err := deps.catalog.ListProducts()
	if err != nil || len(products) == 0 {
		t.Fatalf("catalog must be populated: %v", err)
	}
}

func TestSeedSampleData_SkipsNonEmptyHistory(t *testing.T) {
	t.Parallel()

	existing := memory.SampleOrders()[0]
	orders := memory.NewOrderRepository(existing)
	deliveries := memory.NewDeliveryRepository()

	seeded, err := seedSampleData(orders, deliveries)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if seeded != 0 {
		t.Fatalf("expected no seeding over existing history, got %d", seeded)
	}

	list, _ := deliveries.List()
	if len(list) != 0 {
		t.Fatalf("deliveries must stay untouched, got %d", len(list))
	}
}

type failingOrders struct {
	domain.OrderRepository
}

func (failingOrders) List() ([]domain.Order, error) { return nil, errors.New("db down") }

func TestSeedSampleData_ListError(t *testing.T) {
	t.Parallel()

	if _, err := seedSampleData(failingOrders{}, memory.NewDeliveryRepository()); err == nil {
		t.Fatal("expected list error to propagate")
	}
}

func TestInitRuntimeDependencies_PostgresRequiresDSN(t *testing.T) {
	t.Parallel()

	_, err := initRuntimeDependencies(context.Background(), Config{
		StorageDriver: StorageDriverPostgres,
	}, log.WithField("test", "postgres-missing-dsn"))
	if err == nil || !strings.Contains(err.Error(), "DSN") {
		t.Fatalf("expected missing DSN error, got %v", err)
	}
}

func TestInitRuntimeDependencies_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	_, err := initRuntimeDependencies(context.Background(), Config{
		StorageDriver: "sqlite",
	}, log.WithField("test", "unsupported-driver"))
	if err == nil || !strings.Contains(err.Error(), "unsupported storage driver") {
		t.Fatalf("expected unsupported storage driver error, got %v", err)
	}
}

func TestRuntimeDependencies_CloseIsNilSafe(t *testing.T) {
	t.Parallel()

	var deps *runtimeDependencies
	deps.close(log.WithField("test", "close"))

	called := false
	(&runtimeDependencies{closeFn: func() error {
		called = true
		return errors.New("already closed")
	}}).close(log.WithField("test", "close"))
	if !called {
		t.Fatal("closeFn must be called")
	}
}
