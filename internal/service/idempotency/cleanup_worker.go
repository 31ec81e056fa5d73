// Package idempotency удаляет просроченные ключи оформления заказа.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const (
	defaultCleanupInterval  = 10 * time.Minute
	defaultCleanupBatchSize = 500
)

// CleanupOptions задаёт параметры воркера очистки.
type CleanupOptions struct {
	Logger     *log.Entry
	Registerer prometheus.Registerer
	Clock      func() time.Time
	Interval   time.Duration
	BatchSize  int
}

// CleanupOption настраивает CleanupWorker.
type CleanupOption func(*CleanupOptions)

func WithLogger(logger *log.Entry) CleanupOption {
	return func(opts *CleanupOptions) { opts.Logger = logger }
}

// WithRegisterer задаёт registry для метрик очистки.
func WithRegisterer(registerer prometheus.Registerer) CleanupOption {
	return func(opts *CleanupOptions) { opts.Registerer = registerer }
}

// WithClock подменяет источник времени (для тестов).
func WithClock(clock func() time.Time) CleanupOption {
	return func(opts *CleanupOptions) { opts.Clock = clock }
}

func WithInterval(interval time.Duration) CleanupOption {
	return func(opts *CleanupOptions) { opts.Interval = interval }
}

func WithBatchSize(batchSize int) CleanupOption {
	return func(opts *CleanupOptions) { opts.BatchSize = batchSize }
}

type cleanupMetrics struct {
	runs        *prometheus.CounterVec
	deleted     prometheus.Counter
	lastDeleted prometheus.Gauge
}

// CleanupWorker периодически удаляет ключи checkout-сессий с истёкшим TTL.
type CleanupWorker struct {
	repo    domain.IdempotencyRepository
	logger  *log.Entry
	metrics cleanupMetrics
	opts    CleanupOptions
}

// NewCleanupWorker создаёт воркер очистки.
func NewCleanupWorker(repo domain.IdempotencyRepository, options ...CleanupOption) *CleanupWorker {
	opts := CleanupOptions{
		Interval:  defaultCleanupInterval,
		BatchSize: defaultCleanupBatchSize,
	}
	for _, option := range options {
		option(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = log.WithField("component", "idempotency-cleanup-worker")
	}
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return time.Now().UTC() }
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultCleanupInterval
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultCleanupBatchSize
	}

	factory := promauto.With(opts.Registerer)
	return &CleanupWorker{
		repo:   repo,
		logger: opts.Logger,
		opts:   opts,
		metrics: cleanupMetrics{
			runs: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "storefront_idempotency_cleanup_runs_total",
				Help: "Checkout key cleanup runs grouped by result.",
			}, []string{"result"}),
			deleted: factory.NewCounter(prometheus.CounterOpts{
				Name: "storefront_idempotency_cleanup_deleted_total",
				Help: "Expired checkout keys deleted.",
			}),
			lastDeleted: factory.NewGauge(prometheus.GaugeOpts{
				Name: "storefront_idempotency_cleanup_last_deleted",
				Help: "Checkout keys deleted during the last cleanup run.",
			}),
		},
	}
}

// Run запускает очистку сразу и затем по интервалу, до отмены ctx.
func (w *CleanupWorker) Run(ctx context.Context) {
	if w.repo == nil {
		w.logger.Warn("idempotency cleanup worker is disabled: repo is nil")
		return
	}

	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	for {
		w.RunOnce(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce выполняет один проход очистки на текущий момент времени.
func (w *CleanupWorker) RunOnce(ctx context.Context) int {
	deleted, err := w.DeleteExpired(ctx, w.opts.Clock())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return deleted
		}
		w.metrics.runs.WithLabelValues("error").Inc()
		w.logger.WithError(err).Warn("idempotency cleanup run failed")
		return deleted
	}

	w.metrics.runs.WithLabelValues("ok").Inc()
	w.metrics.lastDeleted.Set(float64(deleted))
	if deleted > 0 {
		w.logger.WithField("deleted", deleted).Info("idempotency cleanup completed")
	}
	return deleted
}

// DeleteExpired удаляет все записи с TTL <= before порциями BatchSize.
func (w *CleanupWorker) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	if before.IsZero() {
		before = w.opts.Clock()
	}

	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		deleted, err := w.repo.DeleteExpired(before, w.opts.BatchSize)
		if err != nil {
			return total, err
		}

		total += deleted
		w.metrics.deleted.Add(float64(deleted))

		if deleted < w.opts.BatchSize {
			return total, nil
		}
	}
}
