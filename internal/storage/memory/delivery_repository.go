package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// deliveryRepositoryInMemory хранит состояние доставки по ID заказа.
type deliveryRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.DeliveryOrder
}

// NewDeliveryRepository создаёт in-memory реализацию DeliveryRepository.
func NewDeliveryRepository(seed ...domain.DeliveryOrder) domain.DeliveryRepository {
	r := &deliveryRepositoryInMemory{items: make(map[string]domain.DeliveryOrder, len(seed))}
	for _, d := range seed {
		r.items[d.OrderID] = d.Clone()
	}
	return r
}

func (r *deliveryRepositoryInMemory) Create(delivery domain.DeliveryOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[delivery.OrderID]; exists {
		return domain.ErrOrderAlreadyExists
	}
	r.items[delivery.OrderID] = delivery.Clone()
	return nil
}

func (r *deliveryRepositoryInMemory) Get(orderID string) (domain.DeliveryOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.items[orderID]
	if !ok {
		return domain.DeliveryOrder{}, domain.ErrDeliveryNotFound
	}
	return d.Clone(), nil
}

// List возвращает доставки от новых заказов к старым.
func (r *deliveryRepositoryInMemory) List() ([]domain.DeliveryOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.DeliveryOrder, 0, len(r.items))
	for _, d := range r.items {
		result = append(result, d.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].OrderID > result[j].OrderID
	})
	return result, nil
}

// Save перезаписывает существующую запись.
func (r *deliveryRepositoryInMemory) Save(delivery domain.DeliveryOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[delivery.OrderID]; !ok {
		return domain.ErrDeliveryNotFound
	}
	r.items[delivery.OrderID] = delivery.Clone()
	return nil
}

var _ domain.DeliveryRepository = (*deliveryRepositoryInMemory)(nil)
