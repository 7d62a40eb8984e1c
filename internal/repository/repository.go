package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ovenlab/orderstock/internal/entity"
)

// ProductRepository handles catalog reads for Products. Absence is an
// explicit false, never an error.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (entity.Product, bool, error)
	FindAll(ctx context.Context) ([]entity.Product, error)
	Save(ctx context.Context, p entity.Product) error
}

// OrderRepository handles persistence for Orders. Create persists the
// client, the order with its lines, and the product stock reservation as
// one unit of work: the conditional decrement either holds for every line
// or nothing is written.
type OrderRepository interface {
	Create(ctx context.Context, order entity.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (entity.Order, bool, error)
	// UpdateStatus transitions an order only when its current status
	// matches from. It reports whether the transition was applied.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.OrderStatus) (bool, error)
	UpdateShippingAddress(ctx context.Context, id uuid.UUID, addr entity.ShippingAddress) error
}

// IngredientRepository handles persistence for Ingredients.
type IngredientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (entity.Ingredient, bool, error)
	Save(ctx context.Context, i entity.Ingredient) error
	// Restock atomically adds quantity to an ingredient's stock.
	Restock(ctx context.Context, id uuid.UUID, qty entity.Quantity) error
	// ConsumeForOrder applies every decrement in needs atomically,
	// guarded by a per-order processed marker. It returns applied=false
	// without touching stock when the order was already consumed, and an
	// InsufficientStockError (with nothing applied) when any ingredient
	// cannot cover its requirement.
	ConsumeForOrder(ctx context.Context, orderID uuid.UUID, needs []entity.IngredientRequirement) (bool, error)
}

// RecipeRepository handles persistence for Recipes.
type RecipeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (entity.Recipe, bool, error)
	FindByProductID(ctx context.Context, productID uuid.UUID) (entity.Recipe, bool, error)
	Save(ctx context.Context, r entity.Recipe) error
	Delete(ctx context.Context, id uuid.UUID) error
}
