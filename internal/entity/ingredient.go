package entity

import "github.com/google/uuid"

// Ingredient is a raw material consumed by recipes. Quantity is the shared
// counter contended by concurrent order fulfillment.
type Ingredient struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Quantity     Quantity  `json:"quantity"`
	Unit         string    `json:"unit"`
	Price        Money     `json:"price"`
	Supplier     string    `json:"supplier"`
	MinimumStock Quantity  `json:"minimum_stock"`
}

// HasLowStock reports whether the on-hand quantity is at or below the
// minimum threshold.
func (i Ingredient) HasLowStock() bool {
	return !i.MinimumStock.LessThan(i.Quantity)
}

// WithQuantity returns a copy with the on-hand quantity replaced.
func (i Ingredient) WithQuantity(q Quantity) Ingredient {
	i.Quantity = q
	return i
}

// IngredientRequirement is the total amount of one ingredient a single
// order consumes, aggregated across all of its lines.
type IngredientRequirement struct {
	IngredientID uuid.UUID
	Quantity     Quantity
}
