// Package checkout оформляет заказ из корзины: считает итог, выделяет номер
// заказа, сохраняет снимок и защищает от повторного нажатия "Place order".
package checkout

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/cart"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/service/events"
)

const (
	defaultKeyTTL      = 24 * time.Hour
	maxIDAllocAttempts = 5
)

// DefaultShippingFee в песо.
var DefaultShippingFee = decimal.NewFromInt(50)

// Quote — суммы, которые показывает экран оформления.
type Quote struct {
	Subtotal    decimal.Decimal
	ShippingFee decimal.Decimal
	Total       decimal.Decimal
}

// QuoteCart считает подытог корзины и итог с доставкой.
func QuoteCart(c cart.Cart, fee decimal.Decimal) Quote {
	subtotal := c.Total()
	return Quote{Subtotal: subtotal, ShippingFee: fee, Total: subtotal.Add(fee)}
}

// Option настраивает Service.
type Option func(*Service)

func WithShippingFee(fee decimal.Decimal) Option {
	return func(s *Service) { s.fee = fee }
}

func WithKeyTTL(ttl time.Duration) Option {
	return func(s *Service) { s.keyTTL = ttl }
}

func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

func WithLogger(logger *log.Entry) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.StorefrontMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithEvents подключает запись событий в timeline и outbox.
func WithEvents(recorder *events.Recorder) Option {
	return func(s *Service) { s.events = recorder }
}

// Service оформляет заказы.
type Service struct {
	orders     domain.OrderRepository
	deliveries domain.DeliveryRepository
	keys       domain.IdempotencyRepository
	events     *events.Recorder
	metrics    *metrics.StorefrontMetrics
	logger     *log.Entry
	clock      func() time.Time
	fee        decimal.Decimal
	keyTTL     time.Duration

	mu  sync.Mutex
	seq map[int]int
}

// NewService создаёт сервис оформления. keys может быть nil: тогда защита от
// повторной отправки отключена.
func NewService(orders domain.OrderRepository, deliveries domain.DeliveryRepository, keys domain.IdempotencyRepository, opts ...Option) *Service {
	s := &Service{
		orders:     orders,
		deliveries: deliveries,
		keys:       keys,
		fee:        DefaultShippingFee,
		keyTTL:     defaultKeyTTL,
		clock:      func() time.Time { return time.Now().UTC() },
		seq:        make(map[int]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.WithField("component", "checkout")
	}
	if s.keyTTL <= 0 {
		s.keyTTL = defaultKeyTTL
	}
	if s.fee.IsNegative() {
		s.fee = decimal.Zero
	}
	return s
}

// ShippingFee возвращает действующую стоимость доставки.
func (s *Service) ShippingFee() decimal.Decimal { return s.fee }

// Quote считает суммы для текущей корзины.
func (s *Service) Quote(c cart.Cart) Quote { return QuoteCart(c, s.fee) }

// receipt сохраняется в ключе идемпотентности после попытки оформления. OrderID
// заполнен и при ошибке, если заказ успел сохраниться.
type receipt struct {
	OrderID string `json:"order_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// PlaceOrder оформляет заказ из корзины. key задаёт ключ checkout-сессии: повторный
// вызов с тем же ключом и той же корзиной возвращает уже созданный заказ.
// Корзину очищает вызывающая сторона после успешного ответа.
func (s *Service) PlaceOrder(ctx context.Context, key string, c cart.Cart) (domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return domain.Order{}, err
	}
	if !c.CanCheckout() {
		return domain.Order{}, domain.ErrCartEmpty
	}

	started := s.clock()
	entry := s.logger.WithField("checkout_key", key)

	var saved domain.Order
	if s.keys != nil && key != "" {
		order, replayed, err := s.claimKey(key, RequestHash(c), started)
		if err != nil || replayed {
			return order, err
		}
		saved = order
	}

	var (
		order domain.Order
		err   error
	)
	if saved.ID != "" {
		entry.WithField("order_id", saved.ID).Info("resuming checkout of order saved by failed attempt")
		order, err = s.complete(saved)
	} else {
		order, err = s.place(c, started)
	}
	if err != nil {
		entry.WithError(err).Warn("place order failed")
		s.finishKey(key, receipt{OrderID: order.ID, Error: err.Error()}, true)
		return domain.Order{}, err
	}

	s.finishKey(key, receipt{OrderID: order.ID}, false)
	s.metrics.RecordOrderPlaced(order.Total, s.clock().Sub(started))

	entry.WithFields(log.Fields{
		"order_id": order.ID,
		"items":    len(order.Items),
		"total":    order.Total.StringFixed(2),
	}).Info("order placed")

	return order, nil
}

// claimKey резервирует ключ. replayed=true означает, что заказ по ключу уже оформлен.
// Если предыдущая попытка упала после сохранения заказа, возвращается этот заказ
// с replayed=false: его нужно довести до конца, а не создавать новый.
func (s *Service) claimKey(key, hash string, now time.Time) (domain.Order, bool, error) {
	record, err := s.keys.CreateProcessing(key, hash, now.Add(s.keyTTL))
	switch {
	case err == nil:
		return domain.Order{}, false, nil
	case errors.Is(err, domain.ErrIdempotencyHashMismatch):
		return domain.Order{}, false, err
	case !errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists):
		return domain.Order{}, false, fmt.Errorf("claim checkout key: %w", err)
	}

	switch record.Status {
	case domain.IdempotencyStatusDone:
		order, err := s.receiptOrder(record)
		if err != nil {
			return domain.Order{}, false, err
		}
		s.metrics.RecordDuplicateSubmission()
		s.logger.WithFields(log.Fields{"checkout_key": key, "order_id": order.ID}).Info("duplicate place-order answered from previous attempt")
		return order, true, nil
	case domain.IdempotencyStatusProcessing:
		s.metrics.RecordDuplicateSubmission()
		return domain.Order{}, false, domain.ErrCheckoutInProgress
	default:
		// Предыдущая попытка завершилась ошибкой: продолжаем под тем же ключом.
		var r receipt
		if err := json.Unmarshal(record.Response, &r); err != nil || r.OrderID == "" {
			return domain.Order{}, false, nil
		}
		order, err := s.receiptOrder(record)
		if err != nil {
			return domain.Order{}, false, err
		}
		return order, false, nil
	}
}

func (s *Service) receiptOrder(record domain.IdempotencyRecord) (domain.Order, error) {
	var r receipt
	if err := json.Unmarshal(record.Response, &r); err != nil {
		return domain.Order{}, fmt.Errorf("decode checkout receipt: %w", err)
	}
	order, err := s.orders.Get(r.OrderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("load placed order: %w", err)
	}
	return order, nil
}

func (s *Service) finishKey(key string, r receipt, failed bool) {
	if s.keys == nil || key == "" {
		return
	}

	body, _ := json.Marshal(r)
	var err error
	if failed {
		err = s.keys.MarkFailed(key, body)
	} else {
		err = s.keys.MarkDone(key, body)
	}
	if err != nil {
		s.logger.WithError(err).WithField("checkout_key", key).Warn("failed to update checkout key")
	}
}

// place сохраняет новый заказ и доводит его до конца. При ошибке после сохранения
// возвращается заказ с заполненным ID.
func (s *Service) place(c cart.Cart, now time.Time) (domain.Order, error) {
	items := c.Lines()
	quote := s.Quote(c)

	order := domain.Order{
		Date:        now,
		Items:       items,
		Subtotal:    quote.Subtotal,
		ShippingFee: quote.ShippingFee,
		Total:       quote.Total,
		Status:      domain.OrderStatusProcessing,
		CreatedAt:   now,
	}

	var err error
	for attempt := 0; attempt < maxIDAllocAttempts; attempt++ {
		order.ID, err = s.nextOrderID(now.Year())
		if err != nil {
			return domain.Order{}, err
		}
		if errs := order.ValidateInvariants(); len(errs) > 0 {
			return domain.Order{}, errors.Join(errs...)
		}

		err = s.orders.Create(order)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrOrderAlreadyExists) {
			return domain.Order{}, fmt.Errorf("save order: %w", err)
		}
		// Номер занят другим экземпляром: перечитываем счётчик из хранилища.
		s.resetSequence(now.Year())
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("allocate order id: %w", err)
	}

	return s.complete(order)
}

// complete создаёт доставку сохранённого заказа и публикует событие о нём.
// Уже существующая доставка не считается ошибкой.
func (s *Service) complete(order domain.Order) (domain.Order, error) {
	if s.deliveries != nil {
		err := s.deliveries.Create(domain.NewDeliveryOrder(order))
		if err != nil && !errors.Is(err, domain.ErrOrderAlreadyExists) {
			return domain.Order{ID: order.ID}, fmt.Errorf("create delivery for %s: %w", order.ID, err)
		}
	}
	if s.events != nil {
		s.events.OrderPlaced(order)
	}

	return order.Clone(), nil
}

func (s *Service) resetSequence(year int) {
	s.mu.Lock()
	delete(s.seq, year)
	s.mu.Unlock()
}

// nextOrderID выдаёт следующий номер за год. Счётчик года инициализируется
// максимальным номером среди уже сохранённых заказов.
func (s *Service) nextOrderID(year int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seq[year]; !ok {
		orders, err := s.orders.List()
		if err != nil {
			return "", fmt.Errorf("list orders: %w", err)
		}
		last := 0
		for _, o := range orders {
			y, n, err := domain.ParseOrderID(o.ID)
			if err == nil && y == year && n > last {
				last = n
			}
		}
		s.seq[year] = last
	}

	s.seq[year]++
	return domain.FormatOrderID(year, s.seq[year]), nil
}

// RequestHash — отпечаток состава корзины для проверки повторной отправки.
func RequestHash(c cart.Cart) string {
	h := sha256.New()
	for _, line := range c.Lines() {
		h.Write([]byte(line.ProductID))
		h.Write([]byte{0})
		h.Write([]byte(strconv.Itoa(line.Quantity)))
		h.Write([]byte{0})
		h.Write([]byte(line.UnitPrice.String()))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
