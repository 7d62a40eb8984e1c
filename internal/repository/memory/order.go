package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ovenlab/orderstock/internal/entity"
	"github.com/ovenlab/orderstock/internal/repository"
)

type OrderRepository struct {
	mu       sync.Mutex
	orders   map[uuid.UUID]entity.Order
	products *ProductRepository
}

// NewOrderRepository creates an order repository that reserves stock
// against the given product repository, like the Postgres adapter's
// single-transaction create.
func NewOrderRepository(products *ProductRepository) *OrderRepository {
	return &OrderRepository{
		orders:   make(map[uuid.UUID]entity.Order),
		products: products,
	}
}

var _ repository.OrderRepository = (*OrderRepository)(nil)

func (r *OrderRepository) Create(_ context.Context, order entity.Order) error {
	// Reserve line by line; on failure release what was taken so the
	// whole unit of work applies or nothing does.
	reserved := make([]entity.OrderLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		if err := r.products.reserve(line.ProductID, line.Quantity); err != nil {
			for _, prev := range reserved {
				r.products.release(prev.ProductID, prev.Quantity)
			}
			return err
		}
		reserved = append(reserved, line)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	return nil
}

func (r *OrderRepository) FindByID(_ context.Context, id uuid.UUID) (entity.Order, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	return o, ok, nil
}

func (r *OrderRepository) UpdateStatus(_ context.Context, id uuid.UUID, from, to entity.OrderStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	r.orders[id] = o.WithStatus(to)
	return true, nil
}

func (r *OrderRepository) UpdateShippingAddress(_ context.Context, id uuid.UUID, addr entity.ShippingAddress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return &entity.NotFoundError{Kind: "order", ID: id.String()}
	}
	r.orders[id] = o.WithShippingAddress(addr)
	return nil
}
