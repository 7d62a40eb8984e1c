package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() Client {
	return Client{ID: uuid.New(), Name: "Maria Silva", Email: "maria@example.com", Phone: "555-0101"}
}

func testAddress() ShippingAddress {
	return ShippingAddress{Street: "1 Oven St", City: "Springfield", State: "IL", Zip: "62701", Country: "US"}
}

func TestNewOrderDerivesTotal(t *testing.T) {
	first := OrderLine{ProductID: uuid.New(), ProductName: "Bread", UnitPrice: MustMoney("10.00"), Quantity: MustQuantity("2")}
	second := OrderLine{ProductID: uuid.New(), ProductName: "Cake", UnitPrice: MustMoney("15.00"), Quantity: MustQuantity("3")}

	order := NewOrder(testClient(), testAddress(), []OrderLine{first, second})

	assert.Equal(t, OrderStatusPendingValidation, order.Status)
	assert.True(t, order.Total.Equal(MustMoney("65.00")))

	trimmed := order.WithoutProduct(first.ProductID)
	assert.True(t, trimmed.Total.Equal(MustMoney("45.00")))
	assert.Len(t, trimmed.Lines, 1)

	// The original order is unchanged.
	assert.True(t, order.Total.Equal(MustMoney("65.00")))
	assert.Len(t, order.Lines, 2)
}

func TestOrderWithLineRecomputesTotal(t *testing.T) {
	order := NewOrder(testClient(), testAddress(), nil)
	assert.True(t, order.Total.IsZero())

	order = order.WithLine(OrderLine{ProductID: uuid.New(), UnitPrice: MustMoney("7.50"), Quantity: MustQuantity("4")})
	assert.True(t, order.Total.Equal(MustMoney("30.00")))
}

func TestOrderWithStatusDoesNotShareLines(t *testing.T) {
	line := OrderLine{ProductID: uuid.New(), UnitPrice: MustMoney("5.00"), Quantity: MustQuantity("1")}
	order := NewOrder(testClient(), testAddress(), []OrderLine{line})

	settled := order.WithStatus(OrderStatusCreated)
	settled.Lines[0].ProductName = "mutated"

	assert.Equal(t, OrderStatusPendingValidation, order.Status)
	assert.NotEqual(t, "mutated", order.Lines[0].ProductName)
}

func TestShippingAddressValidateCollectsAllBlanks(t *testing.T) {
	err := ShippingAddress{Street: "1 Oven St"}.Validate()
	require.Error(t, err)

	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Len(t, errs, 4)
}

func TestClientValidate(t *testing.T) {
	require.NoError(t, testClient().Validate())

	err := Client{Name: "  ", Email: "a@b.c", Phone: ""}.Validate()
	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Len(t, errs, 2)
	assert.Contains(t, err.Error(), "client name is required")
	assert.Contains(t, err.Error(), "client phone is required")
}

func TestNewOrderCreatedEventSnapshotsLines(t *testing.T) {
	first := OrderLine{ProductID: uuid.New(), UnitPrice: MustMoney("10.00"), Quantity: MustQuantity("2")}
	second := OrderLine{ProductID: uuid.New(), UnitPrice: MustMoney("15.00"), Quantity: MustQuantity("3")}
	order := NewOrder(testClient(), testAddress(), []OrderLine{first, second})

	event := NewOrderCreatedEvent(order)

	assert.Equal(t, order.ID, event.OrderID)
	assert.Equal(t, order.Client, event.Client)
	assert.Equal(t, order.DeliveryAddress, event.ShippingAddress)
	require.Len(t, event.Products, 2)
	assert.Equal(t, ProductOrder{ProductID: first.ProductID, Quantity: 2}, event.Products[0])
	assert.Equal(t, ProductOrder{ProductID: second.ProductID, Quantity: 3}, event.Products[1])
}

func TestIngredientHasLowStock(t *testing.T) {
	i := Ingredient{Quantity: MustQuantity("10"), MinimumStock: MustQuantity("5")}
	assert.False(t, i.HasLowStock())

	assert.True(t, i.WithQuantity(MustQuantity("5")).HasLowStock())
	assert.True(t, i.WithQuantity(MustQuantity("2")).HasLowStock())
}
