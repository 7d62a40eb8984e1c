package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ovenlab/orderstock/internal/entity"
	"github.com/ovenlab/orderstock/internal/repository"
)

type RecipeRepository struct {
	mu      sync.Mutex
	recipes map[uuid.UUID]entity.Recipe
}

func NewRecipeRepository() *RecipeRepository {
	return &RecipeRepository{recipes: make(map[uuid.UUID]entity.Recipe)}
}

var _ repository.RecipeRepository = (*RecipeRepository)(nil)

func (r *RecipeRepository) FindByID(_ context.Context, id uuid.UUID) (entity.Recipe, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recipes[id]
	return rec, ok, nil
}

func (r *RecipeRepository) FindByProductID(_ context.Context, productID uuid.UUID) (entity.Recipe, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.recipes {
		if rec.ProductID == productID {
			return rec, true, nil
		}
	}
	return entity.Recipe{}, false, nil
}

func (r *RecipeRepository) Save(_ context.Context, rec entity.Recipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recipes[rec.ID] = rec
	return nil
}

func (r *RecipeRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.recipes[id]; !ok {
		return &entity.NotFoundError{Kind: "recipe", ID: id.String()}
	}
	delete(r.recipes, id)
	return nil
}
