package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// StorageDriverMemory хранит данные в памяти процесса.
	StorageDriverMemory = "memory"
	// StorageDriverPostgres хранит заказы, доставки и outbox в PostgreSQL.
	StorageDriverPostgres = "postgres"
)

// Config описывает настройки запуска витрины.
type Config struct {
	GRPCAddr    string
	MetricsAddr string

	StorageDriver       string
	PostgresDSN         string
	PostgresAutoMigrate bool
	// SeedSampleData заполняет пустое хранилище образцами заказов.
	SeedSampleData bool

	// KafkaBrokers: без брокеров события outbox пишутся в лог.
	KafkaBrokers []string
	// KafkaTopic: если пусто, топик выбирается по типу события.
	KafkaTopic string

	ShippingFee    decimal.Decimal
	CheckoutKeyTTL time.Duration

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration
	// OutboxMaxPendingAge: после этого возраста backlog /healthz отвечает degraded.
	OutboxMaxPendingAge time.Duration

	IdempotencyCleanupInterval  time.Duration
	IdempotencyCleanupBatchSize int

	// CourierInterval включает имитацию доставки, 0 выключает её.
	CourierInterval time.Duration
	// DemoWalkthrough проигрывает сценарий покупки при старте.
	DemoWalkthrough bool
}

// DefaultConfig возвращает настройки для локального запуска.
func DefaultConfig() Config {
	return Config{
		GRPCAddr:                    ":50051",
		MetricsAddr:                 ":9090",
		StorageDriver:               StorageDriverMemory,
		PostgresAutoMigrate:         true,
		SeedSampleData:              true,
		ShippingFee:                 decimal.NewFromInt(50),
		CheckoutKeyTTL:              24 * time.Hour,
		OutboxPollInterval:          time.Second,
		OutboxBatchSize:             100,
		OutboxMaxAttempts:           3,
		OutboxRetryDelay:            100 * time.Millisecond,
		OutboxMaxPendingAge:         5 * time.Minute,
		IdempotencyCleanupInterval:  time.Minute,
		IdempotencyCleanupBatchSize: 500,
	}
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	var errs []error

	switch strings.ToLower(strings.TrimSpace(c.StorageDriver)) {
	case "", StorageDriverMemory:
	case StorageDriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			errs = append(errs, errors.New("postgres storage driver requires a DSN"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported storage driver %q", c.StorageDriver))
	}
	if c.ShippingFee.IsNegative() {
		errs = append(errs, fmt.Errorf("shipping fee must be non-negative, got %s", c.ShippingFee))
	}
	if !c.ShippingFee.Equal(c.ShippingFee.Round(2)) {
		errs = append(errs, fmt.Errorf("shipping fee must have at most 2 decimal places, got %s", c.ShippingFee))
	}
	if c.CourierInterval < 0 {
		errs = append(errs, errors.New("courier interval must be non-negative"))
	}

	return errors.Join(errs...)
}
