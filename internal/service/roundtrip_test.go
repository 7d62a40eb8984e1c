package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovenlab/orderstock/internal/entity"
	"github.com/ovenlab/orderstock/internal/idempotency"
	"github.com/ovenlab/orderstock/internal/metrics"
	"github.com/ovenlab/orderstock/internal/repository/memory"
	"github.com/ovenlab/orderstock/internal/service"
)

// localBus delivers events to the other side synchronously, standing in
// for the broker so a whole order round trip runs in one call.
type localBus struct {
	order *service.OrderService
	stock *service.StockService
}

func (b *localBus) PublishEvent(ctx context.Context, topic, _ string, event any) error {
	switch topic {
	case service.TopicOrdersCreated:
		return b.stock.ProcessOrder(ctx, event.(entity.OrderCreatedEvent))
	case service.TopicStockResponses:
		return b.order.HandleStockResponse(ctx, event.(entity.StockUpdateResponseEvent))
	}
	return nil
}

func TestOrderRoundTrip(t *testing.T) {
	ctx := context.Background()
	bus := &localBus{}

	products := memory.NewProductRepository()
	orders := memory.NewOrderRepository(products)
	ingredients := memory.NewIngredientRepository()
	recipes := memory.NewRecipeRepository()

	bus.order = service.NewOrderService(orders, products, bus, metrics.Nop())
	bus.stock = service.NewStockService(recipes, ingredients, idempotency.NewMemoryStore(), bus, metrics.Nop())

	bread := entity.Product{ID: uuid.New(), Name: "Bread", Price: entity.MustMoney("10.00"), Stock: entity.MustQuantity("10")}
	require.NoError(t, products.Save(ctx, bread))

	flour := uuid.New()
	require.NoError(t, ingredients.Save(ctx, entity.Ingredient{
		ID: flour, Name: "Flour", Quantity: entity.MustQuantity("2"), Unit: "kg",
		Price: entity.MustMoney("2.00"),
	}))
	require.NoError(t, recipes.Save(ctx, entity.Recipe{
		ID:        uuid.New(),
		ProductID: bread.ID,
		Name:      "Bread",
		Ingredients: []entity.RecipeIngredient{
			{IngredientID: flour, Quantity: entity.MustQuantity("1"), Unit: "kg"},
		},
	}))

	// First order takes both kilos of flour and settles as CREATED.
	order, err := bus.order.CreateOrder(ctx, validClient(),
		map[uuid.UUID]entity.Quantity{bread.ID: entity.MustQuantity("2")}, validAddress())
	require.NoError(t, err)

	settled, _, err := orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCreated, settled.Status)

	remaining, _, err := ingredients.FindByID(ctx, flour)
	require.NoError(t, err)
	assert.True(t, remaining.Quantity.IsZero())

	// The next order still has product stock but no flour left, so the
	// stock side cancels it.
	second, err := bus.order.CreateOrder(ctx, validClient(),
		map[uuid.UUID]entity.Quantity{bread.ID: entity.MustQuantity("1")}, validAddress())
	require.NoError(t, err)

	cancelled, _, err := orders.FindByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelledNoStock, cancelled.Status)
}
