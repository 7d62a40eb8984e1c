package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/ovenlab/orderstock/internal/entity"
	"github.com/ovenlab/orderstock/internal/repository"
)

// CreateIngredientCommand carries a new ingredient definition.
type CreateIngredientCommand struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Quantity     entity.Quantity `json:"quantity"`
	Unit         string          `json:"unit"`
	Price        entity.Money    `json:"price"`
	Supplier     string          `json:"supplier"`
	MinimumStock entity.Quantity `json:"minimum_stock"`
}

// IngredientService manages the ingredient catalog.
type IngredientService struct {
	ingredientRepo repository.IngredientRepository
}

func NewIngredientService(ingredientRepo repository.IngredientRepository) *IngredientService {
	return &IngredientService{ingredientRepo: ingredientRepo}
}

func (s *IngredientService) CreateIngredient(ctx context.Context, cmd CreateIngredientCommand) (entity.Ingredient, error) {
	var errs entity.ValidationErrors
	if strings.TrimSpace(cmd.Name) == "" {
		errs.Add("ingredient name is required")
	}
	if strings.TrimSpace(cmd.Unit) == "" {
		errs.Add("ingredient unit is required")
	}
	if err := errs.OrNil(); err != nil {
		return entity.Ingredient{}, err
	}

	ingredient := entity.Ingredient{
		ID:           uuid.New(),
		Name:         cmd.Name,
		Description:  cmd.Description,
		Quantity:     cmd.Quantity,
		Unit:         cmd.Unit,
		Price:        cmd.Price,
		Supplier:     cmd.Supplier,
		MinimumStock: cmd.MinimumStock,
	}
	if err := s.ingredientRepo.Save(ctx, ingredient); err != nil {
		return entity.Ingredient{}, fmt.Errorf("failed to save ingredient: %w", err)
	}
	return ingredient, nil
}

func (s *IngredientService) GetIngredient(ctx context.Context, id uuid.UUID) (entity.Ingredient, error) {
	ingredient, found, err := s.ingredientRepo.FindByID(ctx, id)
	if err != nil {
		return entity.Ingredient{}, err
	}
	if !found {
		return entity.Ingredient{}, &entity.NotFoundError{Kind: "ingredient", ID: id.String()}
	}
	return ingredient, nil
}

// RestockIngredient adds quantity to an ingredient's stock.
func (s *IngredientService) RestockIngredient(ctx context.Context, id uuid.UUID, qty entity.Quantity) (entity.Ingredient, error) {
	if !qty.IsPositive() {
		return entity.Ingredient{}, entity.ValidationErrors{{Reason: "restock quantity must exceed 0"}}
	}
	if err := s.ingredientRepo.Restock(ctx, id, qty); err != nil {
		return entity.Ingredient{}, err
	}

	ingredient, err := s.GetIngredient(ctx, id)
	if err != nil {
		return entity.Ingredient{}, err
	}
	if ingredient.HasLowStock() {
		slog.Warn("Ingredient still at or below minimum stock", "ingredient", ingredient.Name, "quantity", ingredient.Quantity.String())
	}
	return ingredient, nil
}
