// Package tracking отвечает за экран отслеживания: шкалу доставки,
// текст статуса и подтверждение получения.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/service/events"
)

// Step — точка на шкале доставки.
type Step struct {
	Status    domain.DeliveryStatus
	Label     string
	Completed bool
	// ConnectorCompleted относится к линии между этим шагом и следующим.
	ConnectorCompleted bool
}

var stepLabels = map[domain.DeliveryStatus]string{
	domain.DeliveryOrderPlaced:    "Order Placed",
	domain.DeliveryPreparing:      "Preparing",
	domain.DeliveryOutForDelivery: "Out for Delivery",
	domain.DeliveryDelivered:      "Delivered",
}

// Timeline строит четыре шага для текущего статуса доставки.
func Timeline(status domain.DeliveryStatus) []Step {
	all := domain.DeliveryStatuses()
	steps := make([]Step, 0, len(all))
	for i, s := range all {
		steps = append(steps, Step{
			Status:             s,
			Label:              stepLabels[s],
			Completed:          s.Ordinal() <= status.Ordinal(),
			ConnectorCompleted: i < len(all)-1 && s.Ordinal() < status.Ordinal(),
		})
	}
	return steps
}

// StatusMessage возвращает текст под шкалой доставки.
func StatusMessage(d domain.DeliveryOrder) string {
	switch d.Status {
	case domain.DeliveryOrderPlaced:
		return "Your order has been placed"
	case domain.DeliveryPreparing:
		return "We're preparing your order"
	case domain.DeliveryOutForDelivery:
		return "Your order is out for delivery"
	case domain.DeliveryDelivered:
		if d.Received {
			return "Order completed"
		}
		return "Your order has been delivered"
	default:
		return ""
	}
}

// Option настраивает Service.
type Option func(*Service)

func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

func WithLogger(logger *log.Entry) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.StorefrontMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithEvents(recorder *events.Recorder) Option {
	return func(s *Service) { s.events = recorder }
}

// Service управляет состоянием доставок.
type Service struct {
	deliveries domain.DeliveryRepository
	events     *events.Recorder
	metrics    *metrics.StorefrontMetrics
	logger     *log.Entry
	clock      func() time.Time
}

// NewService создаёт сервис отслеживания.
func NewService(deliveries domain.DeliveryRepository, opts ...Option) *Service {
	s := &Service{
		deliveries: deliveries,
		clock:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.WithField("component", "tracking")
	}
	return s
}

// List возвращает заказы на экране отслеживания, новые первыми.
func (s *Service) List() ([]domain.DeliveryOrder, error) {
	return s.deliveries.List()
}

// Get возвращает доставку по номеру заказа.
func (s *Service) Get(orderID string) (domain.DeliveryOrder, error) {
	return s.deliveries.Get(orderID)
}

// MarkReceived отмечает доставленный заказ полученным. Неизвестный заказ,
// недоставленный или уже полученный заказ оставляются без изменений; changed
// сообщает, была ли запись обновлена.
func (s *Service) MarkReceived(ctx context.Context, orderID string) (delivery domain.DeliveryOrder, changed bool, err error) {
	if err := ctx.Err(); err != nil {
		return domain.DeliveryOrder{}, false, err
	}

	d, err := s.deliveries.Get(orderID)
	if errors.Is(err, domain.ErrDeliveryNotFound) {
		s.logger.WithField("order_id", orderID).Debug("mark received ignored: unknown order")
		return domain.DeliveryOrder{}, false, nil
	}
	if err != nil {
		return domain.DeliveryOrder{}, false, fmt.Errorf("load delivery: %w", err)
	}
	if !d.CanMarkReceived() {
		return d, false, nil
	}

	d.Received = true
	d.UpdatedAt = s.clock()
	if err := s.deliveries.Save(d); err != nil {
		return domain.DeliveryOrder{}, false, fmt.Errorf("save delivery: %w", err)
	}

	s.metrics.RecordDeliveryReceived()
	if s.events != nil {
		s.events.OrderReceived(d)
	}
	s.logger.WithField("order_id", orderID).Info("order marked as received")
	return d, true, nil
}

// Advance переводит доставку на следующий шаг. На DELIVERED ничего не меняет.
func (s *Service) Advance(ctx context.Context, orderID string) (domain.DeliveryOrder, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.DeliveryOrder{}, false, err
	}

	d, err := s.deliveries.Get(orderID)
	if err != nil {
		return domain.DeliveryOrder{}, false, err
	}
	if d.Status >= domain.DeliveryDelivered {
		return d, false, nil
	}

	d.Status++
	d.UpdatedAt = s.clock()
	if err := s.deliveries.Save(d); err != nil {
		return domain.DeliveryOrder{}, false, fmt.Errorf("save delivery: %w", err)
	}

	s.metrics.RecordDeliveryAdvanced(d.Status.String())
	if s.events != nil {
		s.events.DeliveryAdvanced(d)
	}
	s.logger.WithFields(log.Fields{"order_id": orderID, "status": d.Status}).Info("delivery advanced")
	return d, true, nil
}
