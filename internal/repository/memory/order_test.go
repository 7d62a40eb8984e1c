package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovenlab/orderstock/internal/entity"
)

func seedProduct(t *testing.T, r *ProductRepository, name, stock string) entity.Product {
	t.Helper()
	p := entity.Product{
		ID: uuid.New(), Name: name, Price: entity.MustMoney("10.00"), Stock: entity.MustQuantity(stock),
	}
	require.NoError(t, r.Save(context.Background(), p))
	return p
}

func TestOrderCreateReleasesReservationsOnFailure(t *testing.T) {
	products := NewProductRepository()
	orders := NewOrderRepository(products)
	ctx := context.Background()

	bread := seedProduct(t, products, "Bread", "5")
	cake := seedProduct(t, products, "Cake", "1")

	order := entity.NewOrder(entity.Client{ID: uuid.New(), Name: "x", Email: "x@y.z", Phone: "1"},
		entity.ShippingAddress{Street: "s", City: "c", State: "st", Zip: "z", Country: "us"},
		[]entity.OrderLine{
			{ProductID: bread.ID, Quantity: entity.MustQuantity("2")},
			{ProductID: cake.ID, Quantity: entity.MustQuantity("3")}, // more than available
		})

	err := orders.Create(ctx, order)
	var insufficient *entity.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)

	// The bread reservation taken before the failure was released.
	p, _, _ := products.FindByID(ctx, bread.ID)
	assert.True(t, p.Stock.Equal(entity.MustQuantity("5")))

	_, found, _ := orders.FindByID(ctx, order.ID)
	assert.False(t, found)
}

func TestOrderUpdateStatusIsConditional(t *testing.T) {
	products := NewProductRepository()
	orders := NewOrderRepository(products)
	ctx := context.Background()

	bread := seedProduct(t, products, "Bread", "5")
	order := entity.NewOrder(entity.Client{ID: uuid.New(), Name: "x", Email: "x@y.z", Phone: "1"},
		entity.ShippingAddress{Street: "s", City: "c", State: "st", Zip: "z", Country: "us"},
		[]entity.OrderLine{{ProductID: bread.ID, Quantity: entity.MustQuantity("1")}})
	require.NoError(t, orders.Create(ctx, order))

	applied, err := orders.UpdateStatus(ctx, order.ID, entity.OrderStatusPendingValidation, entity.OrderStatusCreated)
	require.NoError(t, err)
	assert.True(t, applied)

	// Already settled, the same transition no longer applies.
	applied, err = orders.UpdateStatus(ctx, order.ID, entity.OrderStatusPendingValidation, entity.OrderStatusCancelledNoStock)
	require.NoError(t, err)
	assert.False(t, applied)

	stored, _, _ := orders.FindByID(ctx, order.ID)
	assert.Equal(t, entity.OrderStatusCreated, stored.Status)
}
