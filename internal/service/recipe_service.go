package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ovenlab/orderstock/internal/entity"
	"github.com/ovenlab/orderstock/internal/repository"
)

// RecipeIngredientCommand names one ingredient and the quantity one unit
// of the product consumes.
type RecipeIngredientCommand struct {
	IngredientID uuid.UUID       `json:"ingredient_id"`
	Quantity     entity.Quantity `json:"quantity"`
	Unit         string          `json:"unit"`
}

// CreateRecipeCommand carries a full recipe definition. Updates replace
// the ingredient list wholesale; there is no delta form.
type CreateRecipeCommand struct {
	ProductID       uuid.UUID                 `json:"product_id"`
	Name            string                    `json:"name"`
	Description     string                    `json:"description"`
	Instructions    string                    `json:"instructions"`
	PreparationTime int                       `json:"preparation_time"`
	Difficulty      string                    `json:"difficulty"`
	Ingredients     []RecipeIngredientCommand `json:"ingredients"`
}

// RecipeService manages recipes and their derived cost.
type RecipeService struct {
	recipeRepo     repository.RecipeRepository
	ingredientRepo repository.IngredientRepository
}

func NewRecipeService(recipeRepo repository.RecipeRepository, ingredientRepo repository.IngredientRepository) *RecipeService {
	return &RecipeService{recipeRepo: recipeRepo, ingredientRepo: ingredientRepo}
}

// CreateRecipe validates that every referenced ingredient exists, computes
// the cost from current ingredient prices, and persists the recipe.
func (s *RecipeService) CreateRecipe(ctx context.Context, cmd CreateRecipeCommand) (entity.Recipe, error) {
	ingredients, err := s.resolveIngredients(ctx, cmd.Ingredients)
	if err != nil {
		return entity.Recipe{}, err
	}

	recipe := entity.Recipe{
		ID:              uuid.New(),
		ProductID:       cmd.ProductID,
		Name:            cmd.Name,
		Description:     cmd.Description,
		Instructions:    cmd.Instructions,
		PreparationTime: cmd.PreparationTime,
		Difficulty:      cmd.Difficulty,
	}.WithIngredients(ingredients)

	cost, err := s.costOf(ctx, recipe.Ingredients)
	if err != nil {
		return entity.Recipe{}, err
	}
	recipe = recipe.WithCost(cost)

	if err := s.recipeRepo.Save(ctx, recipe); err != nil {
		return entity.Recipe{}, fmt.Errorf("failed to save recipe: %w", err)
	}
	return recipe, nil
}

// UpdateRecipe replaces the recipe definition, including the whole
// ingredient list, and recomputes the cost.
func (s *RecipeService) UpdateRecipe(ctx context.Context, id uuid.UUID, cmd CreateRecipeCommand) (entity.Recipe, error) {
	existing, found, err := s.recipeRepo.FindByID(ctx, id)
	if err != nil {
		return entity.Recipe{}, err
	}
	if !found {
		return entity.Recipe{}, &entity.NotFoundError{Kind: "recipe", ID: id.String()}
	}

	ingredients, err := s.resolveIngredients(ctx, cmd.Ingredients)
	if err != nil {
		return entity.Recipe{}, err
	}

	recipe := entity.Recipe{
		ID:              existing.ID,
		ProductID:       cmd.ProductID,
		Name:            cmd.Name,
		Description:     cmd.Description,
		Instructions:    cmd.Instructions,
		PreparationTime: cmd.PreparationTime,
		Difficulty:      cmd.Difficulty,
	}.WithIngredients(ingredients)

	cost, err := s.costOf(ctx, recipe.Ingredients)
	if err != nil {
		return entity.Recipe{}, err
	}
	recipe = recipe.WithCost(cost)

	if err := s.recipeRepo.Save(ctx, recipe); err != nil {
		return entity.Recipe{}, fmt.Errorf("failed to save recipe: %w", err)
	}
	return recipe, nil
}

func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (entity.Recipe, error) {
	recipe, found, err := s.recipeRepo.FindByID(ctx, id)
	if err != nil {
		return entity.Recipe{}, err
	}
	if !found {
		return entity.Recipe{}, &entity.NotFoundError{Kind: "recipe", ID: id.String()}
	}
	return recipe, nil
}

func (s *RecipeService) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	return s.recipeRepo.Delete(ctx, id)
}

// CalculateRecipeCost re-reads the recipe and every ingredient's current
// price, so the result reflects prices as of now rather than a cached
// value. An empty ingredient list costs zero.
func (s *RecipeService) CalculateRecipeCost(ctx context.Context, id uuid.UUID) (entity.Money, error) {
	recipe, found, err := s.recipeRepo.FindByID(ctx, id)
	if err != nil {
		return entity.Money{}, err
	}
	if !found {
		return entity.Money{}, &entity.NotFoundError{Kind: "recipe", ID: id.String()}
	}
	return s.costOf(ctx, recipe.Ingredients)
}

// costOf sums ingredient price × required quantity over the list.
func (s *RecipeService) costOf(ctx context.Context, ingredients []entity.RecipeIngredient) (entity.Money, error) {
	cost := entity.ZeroMoney()
	for _, ri := range ingredients {
		ingredient, found, err := s.ingredientRepo.FindByID(ctx, ri.IngredientID)
		if err != nil {
			return entity.Money{}, err
		}
		if !found {
			return entity.Money{}, &entity.NotFoundError{Kind: "ingredient", ID: ri.IngredientID.String()}
		}
		cost, err = cost.Add(ingredient.Price.MulQuantity(ri.Quantity))
		if err != nil {
			return entity.Money{}, err
		}
	}
	return cost, nil
}

// resolveIngredients verifies that every referenced ingredient exists,
// reporting all missing ids together.
func (s *RecipeService) resolveIngredients(ctx context.Context, cmds []RecipeIngredientCommand) ([]entity.RecipeIngredient, error) {
	var errs entity.ValidationErrors
	ingredients := make([]entity.RecipeIngredient, 0, len(cmds))

	for _, cmd := range cmds {
		_, found, err := s.ingredientRepo.FindByID(ctx, cmd.IngredientID)
		if err != nil {
			return nil, err
		}
		if !found {
			errs.Add("ingredient does not exist: %s", cmd.IngredientID)
			continue
		}
		ingredients = append(ingredients, entity.RecipeIngredient{
			IngredientID: cmd.IngredientID,
			Quantity:     cmd.Quantity,
			Unit:         cmd.Unit,
		})
	}

	if err := errs.OrNil(); err != nil {
		return nil, err
	}
	return ingredients, nil
}
