package domain

import "errors"

var (
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item quantity must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// Ошибка отрицательной стоимости доставки.
	ErrShippingFeeNegative = errors.New("shipping fee must be non-negative")
	// Ошибка несоответствия подытога и суммы позиций.
	ErrSubtotalMismatch = errors.New("order subtotal does not match items sum")
	// Ошибка несоответствия итога сумме подытога и доставки.
	ErrTotalMismatch = errors.New("order total does not match subtotal plus shipping")
	// Ошибка неизвестного статуса заказа.
	ErrOrderStatusInvalid = errors.New("order status is invalid")
	// Ошибка формата идентификатора заказа.
	ErrOrderIDInvalid = errors.New("order id must match #ORD-YYYY-NNN")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderAlreadyExists сигнализирует о повторном сохранении заказа с тем же ID.
	ErrOrderAlreadyExists = errors.New("order already exists")
	// ErrDeliveryNotFound возвращается, если для заказа нет записи доставки.
	ErrDeliveryNotFound = errors.New("delivery not found")
	// ErrProductNotFound возвращается, если товара нет в каталоге.
	ErrProductNotFound = errors.New("product not found")
	ErrCartEmpty       = errors.New("cart is empty")
	// ErrCheckoutInProgress возвращается на повторное нажатие "Place order", пока первое ещё обрабатывается.
	ErrCheckoutInProgress = errors.New("checkout is already in progress")
	ErrOutboxPublish      = errors.New("outbox publish failed")
)
