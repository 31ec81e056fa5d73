// Package history отдаёт список заказов и оформление их статусов.
package history

import (
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type Tone string

const (
	ToneWarning Tone = "warning"
	ToneInfo    Tone = "info"
	ToneSuccess Tone = "success"
	ToneDanger  Tone = "danger"
	ToneNeutral Tone = "neutral"
)

// Badge — бейдж статуса заказа. Только для отображения.
type Badge struct {
	Label string
	Tone  Tone
	Color string
}

var badges = map[domain.OrderStatus]Badge{
	domain.OrderStatusProcessing: {Label: "Processing", Tone: ToneWarning, Color: "#FFA726"},
	domain.OrderStatusShipping:   {Label: "Shipping", Tone: ToneInfo, Color: "#42A5F5"},
	domain.OrderStatusDelivered:  {Label: "Delivered", Tone: ToneSuccess, Color: "#66BB6A"},
	domain.OrderStatusCancelled:  {Label: "Cancelled", Tone: ToneDanger, Color: "#EF5350"},
}

// BadgeFor возвращает бейдж для статуса; неизвестный статус получает нейтральный бейдж.
func BadgeFor(status domain.OrderStatus) Badge {
	if b, ok := badges[status]; ok {
		return b
	}
	return Badge{Label: string(status), Tone: ToneNeutral, Color: "#9E9E9E"}
}

// Entry — строка экрана "All orders".
type Entry struct {
	Order domain.Order
	Badge Badge
}

// Service читает историю заказов.
type Service struct {
	orders domain.OrderRepository
}

func NewService(orders domain.OrderRepository) *Service {
	return &Service{orders: orders}
}

// List возвращает заказы от новых к старым вместе с бейджами.
func (s *Service) List() ([]Entry, error) {
	orders, err := s.orders.List()
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	entries := make([]Entry, 0, len(orders))
	for _, o := range orders {
		entries = append(entries, Entry{Order: o, Badge: BadgeFor(o.Status)})
	}
	return entries, nil
}

// Get возвращает заказ по номеру.
func (s *Service) Get(id string) (domain.Order, error) {
	return s.orders.Get(id)
}
