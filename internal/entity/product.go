package entity

import "github.com/google/uuid"

// Product is a sellable catalog item. Stock is mutated only by the
// conditional reservation in the order repository.
type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       Money     `json:"price"`
	Stock       Quantity  `json:"stock"`
}
