// Package memory provides in-memory repository implementations with the
// same atomicity guarantees as the Postgres adapters. They back the service
// tests and local runs without a database.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ovenlab/orderstock/internal/entity"
	"github.com/ovenlab/orderstock/internal/repository"
)

type ProductRepository struct {
	mu       sync.Mutex
	products map[uuid.UUID]entity.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: make(map[uuid.UUID]entity.Product)}
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

func (r *ProductRepository) FindByID(_ context.Context, id uuid.UUID) (entity.Product, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	return p, ok, nil
}

func (r *ProductRepository) FindAll(_ context.Context) ([]entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *ProductRepository) Save(_ context.Context, p entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
	return nil
}

// reserve conditionally decrements stock under the repository lock. Used by
// the order repository to mirror the Postgres conditional update.
func (r *ProductRepository) reserve(id uuid.UUID, qty entity.Quantity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return &entity.NotFoundError{Kind: "product", ID: id.String()}
	}
	remaining, err := p.Stock.Sub(qty)
	if err != nil {
		return entity.InsufficientProductStock(p.Name)
	}
	p.Stock = remaining
	r.products[id] = p
	return nil
}

// release returns previously reserved stock, compensating a failed
// multi-line reservation.
func (r *ProductRepository) release(id uuid.UUID, qty entity.Quantity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		p.Stock = p.Stock.Add(qty)
		r.products[id] = p
	}
}
