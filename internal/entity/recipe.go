package entity

import "github.com/google/uuid"

// RecipeIngredient binds a recipe to one ingredient and the quantity a
// single unit of the product consumes.
type RecipeIngredient struct {
	IngredientID uuid.UUID `json:"ingredient_id"`
	Quantity     Quantity  `json:"quantity"`
	Unit         string    `json:"unit"`
}

// Recipe maps a sellable product to the ingredients required to produce it.
// Cost is derived from current ingredient prices and recomputed on every
// structural change to the ingredient list.
type Recipe struct {
	ID              uuid.UUID          `json:"id"`
	ProductID       uuid.UUID          `json:"product_id"`
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	Instructions    string             `json:"instructions"`
	PreparationTime int                `json:"preparation_time"`
	Difficulty      string             `json:"difficulty"`
	Cost            Money              `json:"cost"`
	Ingredients     []RecipeIngredient `json:"ingredients"`
}

// WithIngredients returns a copy with the ingredient list replaced
// wholesale. The caller recomputes the cost.
func (r Recipe) WithIngredients(ingredients []RecipeIngredient) Recipe {
	out := make([]RecipeIngredient, len(ingredients))
	copy(out, ingredients)
	r.Ingredients = out
	return r
}

func (r Recipe) WithCost(cost Money) Recipe {
	r.Cost = cost
	return r
}
