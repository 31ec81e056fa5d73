// Package cart реализует корзину как неизменяемое значение: каждая операция
// возвращает новую корзину, а исходная остаётся пригодной для отрисовки.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Cart — упорядоченный набор позиций активной сессии.
type Cart struct {
	items  []domain.CartItem
	nextID int
}

// New возвращает пустую корзину.
func New() Cart {
	return Cart{nextID: 1}
}

// FromItems восстанавливает корзину из готовых позиций. Позиции с
// неположительным количеством отбрасываются, повторные id игнорируются.
func FromItems(items []domain.CartItem) Cart {
	c := New()
	seen := make(map[int]bool, len(items))
	for _, item := range items {
		if item.Quantity < 1 || seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		c.items = append(c.items, item)
		if item.ID >= c.nextID {
			c.nextID = item.ID + 1
		}
	}
	return c
}

// Items возвращает копию позиций в порядке добавления.
func (c Cart) Items() []domain.CartItem {
	return append([]domain.CartItem(nil), c.items...)
}

// Len возвращает количество строк корзины.
func (c Cart) Len() int { return len(c.items) }

// IsEmpty сообщает, пуста ли корзина.
func (c Cart) IsEmpty() bool { return len(c.items) == 0 }

// CanCheckout сообщает, доступна ли кнопка оформления.
func (c Cart) CanCheckout() bool { return !c.IsEmpty() }

// Item ищет позицию по id.
func (c Cart) Item(id int) (domain.CartItem, bool) {
	if i := c.index(id); i >= 0 {
		return c.items[i], true
	}
	return domain.CartItem{}, false
}

// Add добавляет товар. Если товар уже лежит в корзине, количество
// суммируется в существующей строке. qty < 1 ничего не меняет.
func (c Cart) Add(product domain.Product, qty int) (Cart, domain.CartItem) {
	if qty < 1 {
		return c, domain.CartItem{}
	}

	for i, item := range c.items {
		if item.ProductID != product.ID {
			continue
		}
		next := c.clone()
		next.items[i].Quantity += qty
		return next, next.items[i]
	}

	next := c.clone()
	item := domain.CartItem{ID: next.nextID, OrderItem: product.LineItem(qty)}
	next.nextID++
	next.items = append(next.items, item)
	return next, item
}

// ChangeQuantity задаёт новое количество. Количество <= 0 удаляет строку,
// неизвестный id ничего не меняет.
func (c Cart) ChangeQuantity(id, quantity int) Cart {
	i := c.index(id)
	if i < 0 {
		return c
	}
	if quantity <= 0 {
		return c.Remove(id)
	}
	next := c.clone()
	next.items[i].Quantity = quantity
	return next
}

// Increment увеличивает количество на единицу.
func (c Cart) Increment(id int) Cart {
	item, ok := c.Item(id)
	if !ok {
		return c
	}
	return c.ChangeQuantity(id, item.Quantity+1)
}

// Decrement уменьшает количество на единицу; на единице строка удаляется.
func (c Cart) Decrement(id int) Cart {
	item, ok := c.Item(id)
	if !ok {
		return c
	}
	return c.ChangeQuantity(id, item.Quantity-1)
}

// Remove удаляет строку; отсутствующий id ничего не меняет.
func (c Cart) Remove(id int) Cart {
	i := c.index(id)
	if i < 0 {
		return c
	}
	next := Cart{nextID: c.nextID, items: make([]domain.CartItem, 0, len(c.items)-1)}
	next.items = append(next.items, c.items[:i]...)
	next.items = append(next.items, c.items[i+1:]...)
	return next
}

// Clear возвращает пустую корзину, сохраняя счётчик id.
func (c Cart) Clear() Cart {
	return Cart{nextID: c.nextID}
}

// Total пересчитывает сумму Σ цена × количество при каждом вызове.
func (c Cart) Total() decimal.Decimal {
	return domain.SumItems(c.Lines())
}

// Lines возвращает позиции без идентификаторов корзины (снимок для заказа).
func (c Cart) Lines() []domain.OrderItem {
	lines := make([]domain.OrderItem, 0, len(c.items))
	for _, item := range c.items {
		lines = append(lines, item.OrderItem)
	}
	return lines
}

func (c Cart) index(id int) int {
	for i, item := range c.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (c Cart) clone() Cart {
	next := c
	if next.nextID == 0 {
		next.nextID = 1
	}
	next.items = append(make([]domain.CartItem, 0, len(c.items)+1), c.items...)
	return next
}
