package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus — статус заказа в истории заказов. Переходы между статусами
// в витрине не выполняются: статус задаётся при создании заказа.
type OrderStatus string

const (
	// OrderStatusProcessing означает, что заказ принят и ещё не отправлен.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipping означает, что заказ передан в доставку.
	OrderStatusShipping  OrderStatus = "shipping"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusShipping, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// OrderItem представляет одну позицию корзины или заказа.
type OrderItem struct {
	ProductID string
	Name      string
	// Quantity не меньше 1.
	Quantity  int
	UnitPrice decimal.Decimal
	ImageRef  string
}

// LineTotal возвращает стоимость позиции: цена × количество.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartItem — позиция корзины с идентификатором, уникальным в пределах корзины.
type CartItem struct {
	ID int
	OrderItem
}

// SumItems складывает стоимости позиций.
func SumItems(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Order — неизменяемый снимок корзины на момент оформления.
type Order struct {
	ID          string
	Date        time.Time
	Items       []OrderItem
	Subtotal    decimal.Decimal
	ShippingFee decimal.Decimal
	Total       decimal.Decimal
	Status      OrderStatus
	CreatedAt   time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if _, _, err := ParseOrderID(o.ID); err != nil {
		errs = append(errs, err)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if !o.Status.Valid() {
		errs = append(errs, ErrOrderStatusInvalid)
	}
	if o.ShippingFee.IsNegative() {
		errs = append(errs, ErrShippingFeeNegative)
	}

	for _, item := range o.Items {
		if item.Quantity <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.UnitPrice.IsNegative() {
			errs = append(errs, ErrItemPriceInvalid)
		}
	}
	if !SumItems(o.Items).Equal(o.Subtotal) {
		errs = append(errs, ErrSubtotalMismatch)
	}
	if !o.Subtotal.Add(o.ShippingFee).Equal(o.Total) {
		errs = append(errs, ErrTotalMismatch)
	}

	return errs
}

// Clone возвращает копию заказа с собственным срезом позиций.
func (o Order) Clone() Order {
	o.Items = append([]OrderItem(nil), o.Items...)
	return o
}

// DateLabel форматирует дату заказа так, как её показывает витрина: "Feb 4, 2024".
func (o Order) DateLabel() string {
	return o.Date.Format("Jan 2, 2006")
}

var orderIDPattern = regexp.MustCompile(`^#ORD-(\d{4})-(\d{3,})$`)

// FormatOrderID собирает идентификатор вида #ORD-2024-001.
func FormatOrderID(year, seq int) string {
	return fmt.Sprintf("#ORD-%04d-%03d", year, seq)
}

// ParseOrderID разбирает идентификатор заказа на год и порядковый номер.
func ParseOrderID(id string) (year, seq int, err error) {
	m := orderIDPattern.FindStringSubmatch(id)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrOrderIDInvalid, id)
	}
	year, _ = strconv.Atoi(m[1])
	seq, err = strconv.Atoi(m[2])
	if err != nil || seq <= 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrOrderIDInvalid, id)
	}
	return year, seq, nil
}
