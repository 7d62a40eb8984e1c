package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	// OrderStatusPendingValidation marks an accepted order awaiting the
	// stock service's verdict.
	OrderStatusPendingValidation OrderStatus = "PENDING_VALIDATION"
	// OrderStatusCreated marks an order whose ingredients were reserved.
	OrderStatusCreated OrderStatus = "CREATED"
	// OrderStatusCancelledNoStock marks an order the stock service could
	// not fulfill.
	OrderStatusCancelledNoStock OrderStatus = "CANCELLED_NO_STOCK"
	// OrderStatusCompleted is terminal and managed outside this core.
	OrderStatusCompleted OrderStatus = "COMPLETED"
)

// ShippingAddress is where an order is delivered. All fields required.
type ShippingAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip_code"`
	Country string `json:"country"`
}

func (a ShippingAddress) Validate() error {
	var errs ValidationErrors
	fields := []struct{ name, value string }{
		{"street", a.Street},
		{"city", a.City},
		{"state", a.State},
		{"zip code", a.Zip},
		{"country", a.Country},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			errs.Add("shipping address %s is required", f.name)
		}
	}
	return errs.OrNil()
}

// OrderLine is one (product, quantity) pair within an order. Value object.
type OrderLine struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	UnitPrice   Money     `json:"unit_price"`
	Quantity    Quantity  `json:"quantity"`
}

// Value is unit price × quantity.
func (l OrderLine) Value() Money { return l.UnitPrice.MulQuantity(l.Quantity) }

// Order is the customer order aggregate. It is immutable: every update
// returns a new value, and the total is recomputed whenever lines change.
type Order struct {
	ID              uuid.UUID       `json:"id"`
	Client          Client          `json:"client"`
	Lines           []OrderLine     `json:"lines"`
	DeliveryAddress ShippingAddress `json:"delivery_address"`
	Status          OrderStatus     `json:"status"`
	Total           Money           `json:"total"`
	CreatedAt       time.Time       `json:"created_at"`
}

// NewOrder assembles an order in PENDING_VALIDATION with its total derived
// from the lines.
func NewOrder(client Client, address ShippingAddress, lines []OrderLine) Order {
	return Order{
		ID:              uuid.New(),
		Client:          client,
		Lines:           cloneLines(lines),
		DeliveryAddress: address,
		Status:          OrderStatusPendingValidation,
		Total:           orderTotal(lines),
		CreatedAt:       time.Now().UTC(),
	}
}

// WithLine returns a copy of the order with one more line and a fresh total.
func (o Order) WithLine(line OrderLine) Order {
	lines := append(cloneLines(o.Lines), line)
	o.Lines = lines
	o.Total = orderTotal(lines)
	return o
}

// WithoutProduct returns a copy of the order without the given product's
// line and a fresh total.
func (o Order) WithoutProduct(productID uuid.UUID) Order {
	lines := make([]OrderLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		if l.ProductID != productID {
			lines = append(lines, l)
		}
	}
	o.Lines = lines
	o.Total = orderTotal(lines)
	return o
}

func (o Order) WithStatus(status OrderStatus) Order {
	o.Lines = cloneLines(o.Lines)
	o.Status = status
	return o
}

func (o Order) WithShippingAddress(address ShippingAddress) Order {
	o.Lines = cloneLines(o.Lines)
	o.DeliveryAddress = address
	return o
}

func cloneLines(lines []OrderLine) []OrderLine {
	out := make([]OrderLine, len(lines))
	copy(out, lines)
	return out
}

func orderTotal(lines []OrderLine) Money {
	total := ZeroMoney()
	for _, l := range lines {
		// Same currency throughout, Add cannot fail here.
		total, _ = total.Add(l.Value())
	}
	return total
}
