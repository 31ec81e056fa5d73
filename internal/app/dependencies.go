package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
	"github.com/vladislavdragonenkov/storefront/internal/storage/postgres"
)

// runtimeDependencies — репозитории выбранного хранилища.
type runtimeDependencies struct {
	catalog        domain.CatalogRepository
	orders         domain.OrderRepository
	deliveries     domain.DeliveryRepository
	timeline       domain.TimelineRepository
	outbox         domain.OutboxRepository
	idempotency    domain.IdempotencyRepository
	storageChecker healthcheck.Checker
	closeFn        func() error
}

// initRuntimeDependencies поднимает хранилище по cfg.StorageDriver.
// Каталог всегда in-memory: товары витрины статичны.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	deps := &runtimeDependencies{catalog: memory.NewCatalogRepository(memory.SampleProducts())}

	switch driver := strings.ToLower(strings.TrimSpace(cfg.StorageDriver)); driver {
	case "", StorageDriverMemory:
		deps.orders = memory.NewOrderRepository()
		deps.deliveries = memory.NewDeliveryRepository()
		deps.timeline = memory.NewTimelineRepository()
		deps.outbox = memory.NewOutboxRepository()
		deps.idempotency = memory.NewIdempotencyRepository()
	case StorageDriverPostgres:
		dsn := strings.TrimSpace(cfg.PostgresDSN)
		if dsn == "" {
			return nil, errors.New("postgres storage driver requires a DSN")
		}
		store, err := postgres.Open(ctx, dsn)
		if err != nil {
			return nil, err
		}
		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("migrate postgres schema: %w", err)
			}
		}
		deps.orders = postgres.NewOrderRepository(store)
		deps.deliveries = postgres.NewDeliveryRepository(store)
		deps.timeline = postgres.NewTimelineRepository(store)
		deps.outbox = postgres.NewOutboxRepository(store)
		deps.idempotency = postgres.NewIdempotencyRepository(store)
		deps.storageChecker = healthcheck.NewSimpleChecker("postgres", store.Ping)
		deps.closeFn = store.Close
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	logger.WithField("driver", cfg.StorageDriver).Info("storage initialized")

	if cfg.SeedSampleData {
		seeded, err := seedSampleData(deps.orders, deps.deliveries)
		if err != nil {
			deps.close(logger)
			return nil, fmt.Errorf("seed sample data: %w", err)
		}
		if seeded > 0 {
			logger.WithField("orders", seeded).Info("sample orders seeded")
		}
	}

	return deps, nil
}

// seedSampleData заполняет пустую историю образцами заказов и доставок.
func seedSampleData(orders domain.OrderRepository, deliveries domain.DeliveryRepository) (int, error) {
	existing, err := orders.List()
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	seeded := 0
	for _, order := range memory.SampleOrders() {
		if err := orders.Create(order); err != nil && !errors.Is(err, domain.ErrOrderAlreadyExists) {
			return seeded, fmt.Errorf("create %s: %w", order.ID, err)
		}
		seeded++
	}
	for _, d := range memory.SampleDeliveries() {
		if err := deliveries.Create(d); err != nil && !errors.Is(err, domain.ErrOrderAlreadyExists) {
			return seeded, fmt.Errorf("create delivery %s: %w", d.OrderID, err)
		}
	}
	return seeded, nil
}

func (d *runtimeDependencies) close(logger *log.Entry) {
	if d == nil || d.closeFn == nil {
		return
	}
	if err := d.closeFn(); err != nil {
		logger.WithError(err).Warn("failed to close storage")
	}
}
