// Package session держит состояние одного пользователя витрины: текущий экран,
// стек возврата, корзину и последний оформленный заказ. Все операции
// сериализуются мьютексом, после каждого изменения Renderer получает Snapshot.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/cart"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/navigation"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
	"github.com/vladislavdragonenkov/storefront/internal/service/history"
	"github.com/vladislavdragonenkov/storefront/internal/service/tracking"
)

// Deps содержит зависимости сессии.
type Deps struct {
	Catalog  domain.CatalogRepository
	Checkout *checkout.Service
	Tracking *tracking.Service
	History  *history.Service
	Renderer Renderer
	Metrics  *metrics.StorefrontMetrics
	Logger   *log.Entry
	// NewKey выдаёт ключ checkout-сессии; по умолчанию uuid.
	NewKey func() string
}

// TrackedOrder — карточка на экране отслеживания.
type TrackedOrder struct {
	Delivery   domain.DeliveryOrder
	Steps      []tracking.Step
	Message    string
	CanReceive bool
	ItemsTotal int
}

// Session — состояние пользовательской сессии.
type Session struct {
	deps Deps
	log  *log.Entry

	mu            sync.Mutex
	nav           *navigation.Navigator
	cart          cart.Cart
	checkoutKey   string
	lastOrder     *domain.Order
	notifications bool
}

// New открывает сессию на экране introduction.
func New(deps Deps) *Session {
	if deps.Renderer == nil {
		deps.Renderer = noopRenderer{}
	}
	if deps.Logger == nil {
		deps.Logger = log.WithField("component", "session")
	}
	if deps.NewKey == nil {
		deps.NewKey = uuid.NewString
	}

	s := &Session{
		deps:          deps,
		log:           deps.Logger,
		nav:           navigation.NewNavigator(navigation.NewStorefrontGraph()),
		cart:          cart.New(),
		notifications: true,
	}
	deps.Metrics.SessionOpened()
	return s
}

// Close закрывает сессию.
func (s *Session) Close() {
	s.deps.Metrics.SessionClosed()
}

// update выполняет fn под мьютексом и отдаёт снимок в Renderer после освобождения.
func (s *Session) update(fn func() error) error {
	snap, err := s.apply(fn)
	if err == nil {
		s.deps.Renderer.Render(snap)
	}
	return err
}

func (s *Session) apply(fn func() error) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := fn()
	return s.snapshotLocked(), err
}

// Snapshot возвращает текущее состояние.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Screen:        s.nav.Current(),
		History:       s.nav.History(),
		CanGoBack:     s.nav.CanGoBack(),
		Cart:          s.cart.Items(),
		CartTotal:     s.cart.Total(),
		CanCheckout:   s.cart.CanCheckout(),
		Notifications: s.notifications,
	}
	if snap.Screen == navigation.ScreenCheckout && s.deps.Checkout != nil {
		q := s.deps.Checkout.Quote(s.cart)
		snap.Quote = &q
	}
	if s.lastOrder != nil {
		o := s.lastOrder.Clone()
		snap.LastOrder = &o
	}
	return snap
}

// Screen возвращает текущий экран.
func (s *Session) Screen() navigation.Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Current()
}

// Navigate выполняет действие на текущем экране. Действие, которого нет в
// графе для текущего экрана, считается ошибкой программиста и приводит к панике.
// Переход в checkout с пустой корзиной отклоняется с domain.ErrCartEmpty.
func (s *Session) Navigate(action navigation.Action) (navigation.Screen, error) {
	if action == navigation.ActionPlaceOrder {
		if _, err := s.PlaceOrder(context.Background()); err != nil {
			return s.Screen(), err
		}
		return s.Screen(), nil
	}

	var screen navigation.Screen
	err := s.update(func() error {
		edge := s.nav.MustResolve(action)

		if action == navigation.ActionCheckout && !s.cart.CanCheckout() {
			return domain.ErrCartEmpty
		}

		from := s.nav.Current()
		next, err := s.nav.Apply(edge)
		if err != nil {
			return err
		}
		screen = next
		s.deps.Metrics.RecordTransition(string(from), string(action))
		s.afterTransition(from, action)
		return nil
	})
	if err != nil {
		return s.Screen(), err
	}
	return screen, nil
}

// afterTransition обновляет состояние, привязанное к экранам.
func (s *Session) afterTransition(from navigation.Screen, action navigation.Action) {
	switch {
	case action == navigation.ActionCheckout:
		s.checkoutKey = s.deps.NewKey()
	case from == navigation.ScreenCheckout:
		s.checkoutKey = ""
	case action == navigation.ActionLogout:
		s.resetLocked()
	}
}

func (s *Session) resetLocked() {
	s.cart = s.cart.Clear()
	s.checkoutKey = ""
	s.lastOrder = nil
	s.notifications = true
}

// Back обрабатывает системную кнопку "назад" по правилам Navigator.Back.
// false означает, что возвращаться некуда.
func (s *Session) Back() (navigation.Screen, bool) {
	var (
		screen navigation.Screen
		moved  bool
	)
	_ = s.update(func() error {
		from := s.nav.Current()
		screen, moved = s.nav.Back()
		if moved && from == navigation.ScreenCheckout {
			s.checkoutKey = ""
		}
		return nil
	})
	return screen, moved
}

// Catalog возвращает товары каталога.
func (s *Session) Catalog() ([]domain.Product, error) {
	return s.deps.Catalog.ListProducts()
}

// AddToCart кладёт товар из каталога в корзину.
func (s *Session) AddToCart(productID string, qty int) (domain.CartItem, error) {
	product, err := s.deps.Catalog.GetProduct(productID)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("add %q to cart: %w", productID, err)
	}

	var item domain.CartItem
	err = s.update(func() error {
		s.cart, item = s.cart.Add(product, qty)
		s.deps.Metrics.RecordCartMutation("add")
		return nil
	})
	return item, err
}

// ChangeQuantity задаёт количество строки; <= 0 удаляет строку.
func (s *Session) ChangeQuantity(itemID, qty int) {
	s.mutateCart("change", func(c cart.Cart) cart.Cart { return c.ChangeQuantity(itemID, qty) })
}

// Increment обрабатывает кнопку "+" в корзине.
func (s *Session) Increment(itemID int) {
	s.mutateCart("increment", func(c cart.Cart) cart.Cart { return c.Increment(itemID) })
}

// Decrement обрабатывает кнопку "-" в корзине; на единице строка удаляется.
func (s *Session) Decrement(itemID int) {
	s.mutateCart("decrement", func(c cart.Cart) cart.Cart { return c.Decrement(itemID) })
}

// RemoveItem удаляет строку корзины.
func (s *Session) RemoveItem(itemID int) {
	s.mutateCart("remove", func(c cart.Cart) cart.Cart { return c.Remove(itemID) })
}

func (s *Session) mutateCart(op string, fn func(cart.Cart) cart.Cart) {
	_ = s.update(func() error {
		s.cart = fn(s.cart)
		s.deps.Metrics.RecordCartMutation(op)
		return nil
	})
}

// Cart возвращает текущую корзину.
func (s *Session) Cart() cart.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

// Quote возвращает суммы экрана оформления для текущей корзины.
func (s *Session) Quote() checkout.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deps.Checkout.Quote(s.cart)
}

// PlaceOrder оформляет заказ из текущей корзины и переходит на экран
// подтверждения. Повторный вызов на экране подтверждения возвращает тот же
// заказ. Вызов вне checkout и confirmation приводит к панике.
func (s *Session) PlaceOrder(ctx context.Context) (domain.Order, error) {
	var order domain.Order
	err := s.update(func() error {
		if s.nav.Current() == navigation.ScreenConfirmation && s.lastOrder != nil {
			order = s.lastOrder.Clone()
			s.deps.Metrics.RecordDuplicateSubmission()
			return nil
		}

		edge := s.nav.MustResolve(navigation.ActionPlaceOrder)

		placed, err := s.deps.Checkout.PlaceOrder(ctx, s.checkoutKey, s.cart)
		if err != nil {
			return err
		}

		if _, err := s.nav.Apply(edge); err != nil {
			return err
		}
		s.deps.Metrics.RecordTransition(string(edge.From), string(edge.Action))

		s.cart = s.cart.Clear()
		s.checkoutKey = ""
		s.lastOrder = &placed
		order = placed.Clone()
		return nil
	})
	if err != nil && !errors.Is(err, domain.ErrCheckoutInProgress) {
		s.log.WithError(err).Warn("place order failed")
	}
	return order, err
}

// LastOrder возвращает заказ, показанный на экране подтверждения.
func (s *Session) LastOrder() (domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastOrder == nil {
		return domain.Order{}, false
	}
	return s.lastOrder.Clone(), true
}

// Orders возвращает историю заказов, новые первыми.
func (s *Session) Orders() ([]history.Entry, error) {
	return s.deps.History.List()
}

// Deliveries возвращает карточки экрана отслеживания.
func (s *Session) Deliveries() ([]TrackedOrder, error) {
	list, err := s.deps.Tracking.List()
	if err != nil {
		return nil, err
	}

	result := make([]TrackedOrder, 0, len(list))
	for _, d := range list {
		result = append(result, trackedOrder(d))
	}
	return result, nil
}

func trackedOrder(d domain.DeliveryOrder) TrackedOrder {
	items := 0
	for _, item := range d.Items {
		items += item.Quantity
	}
	return TrackedOrder{
		Delivery:   d,
		Steps:      tracking.Timeline(d.Status),
		Message:    tracking.StatusMessage(d),
		CanReceive: d.CanMarkReceived(),
		ItemsTotal: items,
	}
}

// MarkReceived обрабатывает кнопку "Order received". Для недоставленного или
// неизвестного заказа ничего не делает.
func (s *Session) MarkReceived(ctx context.Context, orderID string) (bool, error) {
	var changed bool
	err := s.update(func() error {
		var err error
		_, changed, err = s.deps.Tracking.MarkReceived(ctx, orderID)
		return err
	})
	return changed, err
}

// SetNotifications переключает уведомления на экране профиля.
func (s *Session) SetNotifications(enabled bool) {
	_ = s.update(func() error {
		s.notifications = enabled
		return nil
	})
}
