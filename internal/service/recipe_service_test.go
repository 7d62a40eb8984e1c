package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovenlab/orderstock/internal/entity"
	"github.com/ovenlab/orderstock/internal/repository/memory"
	"github.com/ovenlab/orderstock/internal/service"
)

type recipeFixture struct {
	ingredients *memory.IngredientRepository
	recipes     *memory.RecipeRepository
	svc         *service.RecipeService

	flour uuid.UUID
	sugar uuid.UUID
}

func newRecipeFixture(t *testing.T) *recipeFixture {
	t.Helper()
	ctx := context.Background()

	f := &recipeFixture{
		ingredients: memory.NewIngredientRepository(),
		recipes:     memory.NewRecipeRepository(),
		flour:       uuid.New(),
		sugar:       uuid.New(),
	}
	f.svc = service.NewRecipeService(f.recipes, f.ingredients)

	require.NoError(t, f.ingredients.Save(ctx, entity.Ingredient{
		ID: f.flour, Name: "Flour", Quantity: entity.MustQuantity("1000"), Unit: "g",
		Price: entity.MustMoney("2.00"),
	}))
	require.NoError(t, f.ingredients.Save(ctx, entity.Ingredient{
		ID: f.sugar, Name: "Sugar", Quantity: entity.MustQuantity("1000"), Unit: "g",
		Price: entity.MustMoney("3.00"),
	}))
	return f
}

func (f *recipeFixture) breadCommand() service.CreateRecipeCommand {
	return service.CreateRecipeCommand{
		ProductID: uuid.New(),
		Name:      "Bread",
		Ingredients: []service.RecipeIngredientCommand{
			{IngredientID: f.flour, Quantity: entity.MustQuantity("500"), Unit: "g"},
			{IngredientID: f.sugar, Quantity: entity.MustQuantity("250"), Unit: "g"},
		},
	}
}

func TestCreateRecipeComputesCost(t *testing.T) {
	f := newRecipeFixture(t)

	// 500 × 2.00 + 250 × 3.00 = 1750.00
	recipe, err := f.svc.CreateRecipe(context.Background(), f.breadCommand())
	require.NoError(t, err)

	assert.True(t, recipe.Cost.Equal(entity.MustMoney("1750.00")))
	assert.Len(t, recipe.Ingredients, 2)

	stored, err := f.svc.GetRecipe(context.Background(), recipe.ID)
	require.NoError(t, err)
	assert.True(t, stored.Cost.Equal(recipe.Cost))
}

func TestRecipeCostIsOrderIndependent(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	cmd := f.breadCommand()
	forward, err := f.svc.CreateRecipe(ctx, cmd)
	require.NoError(t, err)

	cmd.Ingredients[0], cmd.Ingredients[1] = cmd.Ingredients[1], cmd.Ingredients[0]
	reversed, err := f.svc.CreateRecipe(ctx, cmd)
	require.NoError(t, err)

	assert.True(t, forward.Cost.Equal(reversed.Cost))
}

func TestRecipeCostEmptyIngredientsIsZero(t *testing.T) {
	f := newRecipeFixture(t)

	recipe, err := f.svc.CreateRecipe(context.Background(), service.CreateRecipeCommand{
		ProductID: uuid.New(),
		Name:      "Water",
	})
	require.NoError(t, err)
	assert.True(t, recipe.Cost.IsZero())

	cost, err := f.svc.CalculateRecipeCost(context.Background(), recipe.ID)
	require.NoError(t, err)
	assert.True(t, cost.IsZero())
}

func TestCalculateRecipeCostUsesCurrentPrices(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	recipe, err := f.svc.CreateRecipe(ctx, f.breadCommand())
	require.NoError(t, err)
	require.True(t, recipe.Cost.Equal(entity.MustMoney("1750.00")))

	// Flour doubles in price after the recipe was saved.
	flour, _, err := f.ingredients.FindByID(ctx, f.flour)
	require.NoError(t, err)
	flour.Price = entity.MustMoney("4.00")
	require.NoError(t, f.ingredients.Save(ctx, flour))

	cost, err := f.svc.CalculateRecipeCost(ctx, recipe.ID)
	require.NoError(t, err)
	assert.True(t, cost.Equal(entity.MustMoney("2750.00")))

	// The stored cost still reflects prices at save time.
	stored, err := f.svc.GetRecipe(ctx, recipe.ID)
	require.NoError(t, err)
	assert.True(t, stored.Cost.Equal(entity.MustMoney("1750.00")))
}

func TestCreateRecipeReportsAllMissingIngredients(t *testing.T) {
	f := newRecipeFixture(t)

	cmd := f.breadCommand()
	cmd.Ingredients = append(cmd.Ingredients,
		service.RecipeIngredientCommand{IngredientID: uuid.New(), Quantity: entity.MustQuantity("1"), Unit: "g"},
		service.RecipeIngredientCommand{IngredientID: uuid.New(), Quantity: entity.MustQuantity("2"), Unit: "g"},
	)

	_, err := f.svc.CreateRecipe(context.Background(), cmd)
	require.Error(t, err)

	var errs entity.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Len(t, errs, 2)
	assert.Contains(t, err.Error(), "ingredient does not exist")
}

func TestUpdateRecipeReplacesIngredientListWholesale(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	recipe, err := f.svc.CreateRecipe(ctx, f.breadCommand())
	require.NoError(t, err)

	cmd := f.breadCommand()
	cmd.Name = "Plain Bread"
	cmd.Ingredients = []service.RecipeIngredientCommand{
		{IngredientID: f.flour, Quantity: entity.MustQuantity("600"), Unit: "g"},
	}

	updated, err := f.svc.UpdateRecipe(ctx, recipe.ID, cmd)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, updated.ID)
	assert.Equal(t, "Plain Bread", updated.Name)
	require.Len(t, updated.Ingredients, 1)
	assert.True(t, updated.Cost.Equal(entity.MustMoney("1200.00")))
}

func TestUpdateRecipeNotFound(t *testing.T) {
	f := newRecipeFixture(t)

	_, err := f.svc.UpdateRecipe(context.Background(), uuid.New(), f.breadCommand())
	var notFound *entity.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestDeleteRecipe(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	recipe, err := f.svc.CreateRecipe(ctx, f.breadCommand())
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteRecipe(ctx, recipe.ID))

	_, err = f.svc.GetRecipe(ctx, recipe.ID)
	var notFound *entity.NotFoundError
	require.ErrorAs(t, err, &notFound)

	err = f.svc.DeleteRecipe(ctx, recipe.ID)
	require.ErrorAs(t, err, &notFound)
}
