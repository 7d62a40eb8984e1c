package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ovenlab/orderstock/internal/entity"
	"github.com/ovenlab/orderstock/internal/repository"
)

type IngredientRepository struct {
	mu          sync.Mutex
	ingredients map[uuid.UUID]entity.Ingredient
	processed   map[uuid.UUID]struct{}
}

func NewIngredientRepository() *IngredientRepository {
	return &IngredientRepository{
		ingredients: make(map[uuid.UUID]entity.Ingredient),
		processed:   make(map[uuid.UUID]struct{}),
	}
}

var _ repository.IngredientRepository = (*IngredientRepository)(nil)

func (r *IngredientRepository) FindByID(_ context.Context, id uuid.UUID) (entity.Ingredient, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.ingredients[id]
	return i, ok, nil
}

func (r *IngredientRepository) Save(_ context.Context, i entity.Ingredient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ingredients[i.ID] = i
	return nil
}

func (r *IngredientRepository) Restock(_ context.Context, id uuid.UUID, qty entity.Quantity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.ingredients[id]
	if !ok {
		return &entity.NotFoundError{Kind: "ingredient", ID: id.String()}
	}
	r.ingredients[id] = i.WithQuantity(i.Quantity.Add(qty))
	return nil
}

// ConsumeForOrder checks every requirement before applying any decrement,
// all under one lock, mirroring the Postgres transaction.
func (r *IngredientRepository) ConsumeForOrder(_ context.Context, orderID uuid.UUID, needs []entity.IngredientRequirement) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, done := r.processed[orderID]; done {
		return false, nil
	}

	// Phase one: every ingredient must exist and cover its requirement.
	for _, need := range needs {
		i, ok := r.ingredients[need.IngredientID]
		if !ok {
			return false, &entity.NotFoundError{Kind: "ingredient", ID: need.IngredientID.String()}
		}
		if i.Quantity.LessThan(need.Quantity) {
			return false, entity.InsufficientIngredientStock(i.Name)
		}
	}

	// Phase two: commit all decrements and the processed marker.
	for _, need := range needs {
		i := r.ingredients[need.IngredientID]
		remaining, err := i.Quantity.Sub(need.Quantity)
		if err != nil {
			return false, err
		}
		r.ingredients[need.IngredientID] = i.WithQuantity(remaining)
	}
	r.processed[orderID] = struct{}{}
	return true, nil
}
