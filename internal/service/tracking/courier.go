package tracking

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const defaultCourierInterval = 30 * time.Second

// Courier имитирует службу доставки: по таймеру двигает незавершённые доставки на шаг вперёд.
type Courier struct {
	svc      *Service
	interval time.Duration
	logger   *log.Entry
}

// NewCourier создаёт курьера поверх сервиса отслеживания.
func NewCourier(svc *Service, interval time.Duration, logger *log.Entry) *Courier {
	if interval <= 0 {
		interval = defaultCourierInterval
	}
	if logger == nil {
		logger = log.WithField("component", "courier")
	}
	return &Courier{svc: svc, interval: interval, logger: logger}
}

// Run двигает доставки каждые interval до отмены ctx.
func (c *Courier) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.logger.WithField("interval", c.interval).Info("courier started")
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("courier stopped")
			return
		case <-ticker.C:
			c.Tick(ctx)
		}
	}
}

// Tick продвигает каждую недоставленную доставку на один шаг и возвращает число изменений.
func (c *Courier) Tick(ctx context.Context) int {
	deliveries, err := c.svc.List()
	if err != nil {
		c.logger.WithError(err).Warn("failed to list deliveries")
		return 0
	}

	advanced := 0
	for _, d := range deliveries {
		if d.Status == domain.DeliveryDelivered {
			continue
		}
		if ctx.Err() != nil {
			return advanced
		}
		if _, changed, err := c.svc.Advance(ctx, d.OrderID); err != nil {
			c.logger.WithError(err).WithField("order_id", d.OrderID).Warn("failed to advance delivery")
		} else if changed {
			advanced++
		}
	}
	return advanced
}
