package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// catalogRepositoryInMemory хранит каталог в памяти в порядке добавления.
type catalogRepositoryInMemory struct {
	mu       sync.RWMutex
	products []domain.Product
	byID     map[string]int
}

// NewCatalogRepository возвращает каталог, заполненный переданными товарами.
func NewCatalogRepository(products []domain.Product) domain.CatalogRepository {
	r := &catalogRepositoryInMemory{
		products: make([]domain.Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	for _, p := range products {
		if i, ok := r.byID[p.ID]; ok {
			r.products[i] = p
			continue
		}
		r.byID[p.ID] = len(r.products)
		r.products = append(r.products, p)
	}
	return r
}

// ListProducts возвращает копию каталога.
func (r *catalogRepositoryInMemory) ListProducts() ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]domain.Product(nil), r.products...), nil
}

// GetProduct возвращает товар или ErrProductNotFound.
func (r *catalogRepositoryInMemory) GetProduct(id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return r.products[i], nil
}

var _ domain.CatalogRepository = (*catalogRepositoryInMemory)(nil)
