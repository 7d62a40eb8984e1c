package entity

import "github.com/google/uuid"

// ProductOrder is one (product, quantity) line on the wire.
type ProductOrder struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
}

// OrderCreatedEvent is the sole contract between the order and stock
// services: published once per persisted order, never mutated.
type OrderCreatedEvent struct {
	OrderID         uuid.UUID       `json:"order_id"`
	Client          Client          `json:"client"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	Products        []ProductOrder  `json:"products"`
}

// NewOrderCreatedEvent snapshots a persisted order into the wire contract.
func NewOrderCreatedEvent(o Order) OrderCreatedEvent {
	products := make([]ProductOrder, len(o.Lines))
	for i, l := range o.Lines {
		products[i] = ProductOrder{
			ProductID: l.ProductID,
			Quantity:  l.Quantity.Decimal().IntPart(),
		}
	}
	return OrderCreatedEvent{
		OrderID:         o.ID,
		Client:          o.Client,
		ShippingAddress: o.DeliveryAddress,
		Products:        products,
	}
}

type StockValidationStatus string

const (
	StockReserved         StockValidationStatus = "RESERVED"
	StockCancelledNoStock StockValidationStatus = "CANCELLED_NO_STOCK"
)

// StockUpdateResponseEvent is the stock service's verdict for one order,
// consumed by the order side to settle PENDING_VALIDATION.
type StockUpdateResponseEvent struct {
	OrderID uuid.UUID             `json:"order_id"`
	Status  StockValidationStatus `json:"status"`
	Reason  string                `json:"reason,omitempty"`
}
