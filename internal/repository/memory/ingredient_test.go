package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovenlab/orderstock/internal/entity"
)

func seedIngredient(t *testing.T, r *IngredientRepository, name, qty string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, r.Save(context.Background(), entity.Ingredient{
		ID: id, Name: name, Quantity: entity.MustQuantity(qty), Unit: "kg",
	}))
	return id
}

func TestConsumeForOrderAppliesAllDecrements(t *testing.T) {
	r := NewIngredientRepository()
	flour := seedIngredient(t, r, "Flour", "10")
	sugar := seedIngredient(t, r, "Sugar", "10")

	applied, err := r.ConsumeForOrder(context.Background(), uuid.New(), []entity.IngredientRequirement{
		{IngredientID: flour, Quantity: entity.MustQuantity("4")},
		{IngredientID: sugar, Quantity: entity.MustQuantity("2.5")},
	})
	require.NoError(t, err)
	assert.True(t, applied)

	f, _, _ := r.FindByID(context.Background(), flour)
	s, _, _ := r.FindByID(context.Background(), sugar)
	assert.True(t, f.Quantity.Equal(entity.MustQuantity("6")))
	assert.True(t, s.Quantity.Equal(entity.MustQuantity("7.5")))
}

func TestConsumeForOrderRollsBackOnInsufficiency(t *testing.T) {
	r := NewIngredientRepository()
	flour := seedIngredient(t, r, "Flour", "10")
	sugar := seedIngredient(t, r, "Sugar", "1")

	applied, err := r.ConsumeForOrder(context.Background(), uuid.New(), []entity.IngredientRequirement{
		{IngredientID: flour, Quantity: entity.MustQuantity("4")},
		{IngredientID: sugar, Quantity: entity.MustQuantity("2")},
	})
	assert.False(t, applied)

	var insufficient *entity.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "insufficient stock of Sugar", err.Error())

	f, _, _ := r.FindByID(context.Background(), flour)
	assert.True(t, f.Quantity.Equal(entity.MustQuantity("10")), "no partial decrement may survive")
}

func TestConsumeForOrderIsIdempotentPerOrder(t *testing.T) {
	r := NewIngredientRepository()
	flour := seedIngredient(t, r, "Flour", "10")
	orderID := uuid.New()
	needs := []entity.IngredientRequirement{
		{IngredientID: flour, Quantity: entity.MustQuantity("3")},
	}

	applied, err := r.ConsumeForOrder(context.Background(), orderID, needs)
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = r.ConsumeForOrder(context.Background(), orderID, needs)
	require.NoError(t, err)
	assert.False(t, applied)

	f, _, _ := r.FindByID(context.Background(), flour)
	assert.True(t, f.Quantity.Equal(entity.MustQuantity("7")))
}

func TestConsumeForOrderConcurrentContention(t *testing.T) {
	r := NewIngredientRepository()
	flour := seedIngredient(t, r, "Flour", "5")

	// Ten orders each want 1 kg out of the 5 available.
	var wg sync.WaitGroup
	results := make([]error, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = r.ConsumeForOrder(context.Background(), uuid.New(), []entity.IngredientRequirement{
				{IngredientID: flour, Quantity: entity.MustQuantity("1")},
			})
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range results {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 5, succeeded)

	f, _, _ := r.FindByID(context.Background(), flour)
	assert.True(t, f.Quantity.IsZero())
}
