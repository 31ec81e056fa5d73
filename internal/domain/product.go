package domain

import "github.com/shopspring/decimal"

// Category — раздел каталога на экране поиска.
type Category string

const (
	CategoryBooklet   Category = "Booklet"
	CategoryBallpen   Category = "Ballpen"
	CategoryPaper     Category = "Paper"
	CategoryWearables Category = "Wearables"
	CategoryMerch     Category = "Merch"
	CategoryOthers    Category = "Others"
)

// Categories возвращает разделы каталога в порядке отображения.
func Categories() []Category {
	return []Category{
		CategoryBooklet,
		CategoryBallpen,
		CategoryPaper,
		CategoryWearables,
		CategoryMerch,
		CategoryOthers,
	}
}

// Product — товар каталога.
type Product struct {
	ID        string
	Name      string
	Category  Category
	UnitPrice decimal.Decimal
	// ImageRef разрешается слоем отрисовки.
	ImageRef string
}

// LineItem строит позицию заказа для товара в указанном количестве.
func (p Product) LineItem(qty int) OrderItem {
	return OrderItem{
		ProductID: p.ID,
		Name:      p.Name,
		Quantity:  qty,
		UnitPrice: p.UnitPrice,
		ImageRef:  p.ImageRef,
	}
}
