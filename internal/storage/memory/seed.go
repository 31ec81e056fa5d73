package memory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Ссылка на изображение-заглушку, которой витрина помечает все товары.
const placeholderImage = "mapua_logo"

func php(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// SampleProducts — стартовый каталог витрины.
func SampleProducts() []domain.Product {
	return []domain.Product{
		{ID: "long-booklet", Name: "Long Booklet", Category: domain.CategoryBooklet, UnitPrice: php("10.00"), ImageRef: placeholderImage},
		{ID: "mmcm-jacket", Name: "MMCM Jacket", Category: domain.CategoryWearables, UnitPrice: php("1500.00"), ImageRef: placeholderImage},
		{ID: "id-sling", Name: "ID Sling", Category: domain.CategoryMerch, UnitPrice: php("100.00"), ImageRef: placeholderImage},
		{ID: "mmcm-stickers", Name: "MMCM Stickers", Category: domain.CategoryMerch, UnitPrice: php("100.00"), ImageRef: placeholderImage},
		{ID: "shs-uniform", Name: "SHS Uniform", Category: domain.CategoryWearables, UnitPrice: php("800.00"), ImageRef: placeholderImage},
	}
}

func sampleItem(productID, name string, qty int, price string) domain.OrderItem {
	return domain.OrderItem{ProductID: productID, Name: name, Quantity: qty, UnitPrice: php(price), ImageRef: placeholderImage}
}

func sampleDate(month time.Month, day int) time.Time {
	return time.Date(2024, month, day, 9, 0, 0, 0, time.UTC)
}

// SampleOrders — история заказов, с которой стартует витрина.
// Суммы в образцах не включают доставку.
func SampleOrders() []domain.Order {
	orders := []domain.Order{
		{
			ID:   "#ORD-2024-001",
			Date: sampleDate(time.February, 4),
			Items: []domain.OrderItem{
				sampleItem("shs-uniform", "SHS Uniform", 1, "800.00"),
				sampleItem("id-sling", "ID Sling", 2, "100.00"),
			},
			Status: domain.OrderStatusShipping,
		},
		{
			ID:     "#ORD-2024-002",
			Date:   sampleDate(time.February, 1),
			Items:  []domain.OrderItem{sampleItem("mmcm-jacket", "MMCM Jacket", 1, "1500.00")},
			Status: domain.OrderStatusDelivered,
		},
		{
			ID:     "#ORD-2024-003",
			Date:   sampleDate(time.January, 28),
			Items:  []domain.OrderItem{sampleItem("long-booklet", "Long Booklet", 5, "10.00")},
			Status: domain.OrderStatusDelivered,
		},
	}

	for i := range orders {
		orders[i].Subtotal = domain.SumItems(orders[i].Items)
		orders[i].ShippingFee = decimal.Zero
		orders[i].Total = orders[i].Subtotal
		orders[i].CreatedAt = orders[i].Date
	}
	return orders
}

// SampleDeliveries — заказы на экране отслеживания.
func SampleDeliveries() []domain.DeliveryOrder {
	orders := SampleOrders()
	first := domain.NewDeliveryOrder(orders[0])
	first.Status = domain.DeliveryOutForDelivery

	second := domain.NewDeliveryOrder(orders[1])
	second.Status = domain.DeliveryDelivered

	return []domain.DeliveryOrder{first, second}
}
