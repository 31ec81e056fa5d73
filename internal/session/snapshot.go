package session

import (
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/navigation"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
)

// Snapshot — неизменяемое состояние сессии, которое получает слой отрисовки.
type Snapshot struct {
	Screen        navigation.Screen
	History       []navigation.Screen
	CanGoBack     bool
	Cart          []domain.CartItem
	CartTotal     decimal.Decimal
	CanCheckout   bool
	Quote         *checkout.Quote
	LastOrder     *domain.Order
	Notifications bool
}

// Renderer — внешний слой отрисовки. Вызывается после каждого изменения состояния.
type Renderer interface {
	Render(Snapshot)
}

// RendererFunc позволяет использовать функцию как Renderer.
type RendererFunc func(Snapshot)

func (f RendererFunc) Render(s Snapshot) { f(s) }

type noopRenderer struct{}

func (noopRenderer) Render(Snapshot) {}

// LogRenderer выводит снимки в лог; используется в headless-режиме.
type LogRenderer struct {
	logger *log.Entry
}

func NewLogRenderer(logger *log.Entry) *LogRenderer {
	if logger == nil {
		logger = log.WithField("component", "renderer")
	}
	return &LogRenderer{logger: logger}
}

func (r *LogRenderer) Render(s Snapshot) {
	fields := log.Fields{
		"screen":     s.Screen,
		"history":    s.History,
		"cart_lines": len(s.Cart),
		"cart_total": s.CartTotal.StringFixed(2),
	}
	if s.Quote != nil {
		fields["order_total"] = s.Quote.Total.StringFixed(2)
	}
	if s.LastOrder != nil {
		fields["order_id"] = s.LastOrder.ID
	}
	r.logger.WithFields(fields).Info("render")
}
