package entity

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultCurrency tags every order total and recipe cost.
const DefaultCurrency = "USD"

// Quantity is a non-negative decimal amount of product stock or ingredients.
type Quantity struct {
	value decimal.Decimal
}

// NewQuantity wraps a decimal, rejecting negative values.
func NewQuantity(value decimal.Decimal) (Quantity, error) {
	if value.IsNegative() {
		return Quantity{}, fmt.Errorf("quantity cannot be negative: %s", value)
	}
	return Quantity{value: value}, nil
}

// QuantityFromInt builds a Quantity from a whole number of units.
func QuantityFromInt(n int64) (Quantity, error) {
	return NewQuantity(decimal.NewFromInt(n))
}

// MustQuantity parses a decimal literal and panics on bad input. Seed and
// test data only.
func MustQuantity(s string) Quantity {
	q, err := NewQuantity(decimal.RequireFromString(s))
	if err != nil {
		panic(err)
	}
	return q
}

func (q Quantity) Decimal() decimal.Decimal { return q.value }

func (q Quantity) Add(other Quantity) Quantity {
	return Quantity{value: q.value.Add(other.value)}
}

// Sub returns q - other, failing instead of going negative.
func (q Quantity) Sub(other Quantity) (Quantity, error) {
	return NewQuantity(q.value.Sub(other.value))
}

func (q Quantity) Mul(other Quantity) Quantity {
	return Quantity{value: q.value.Mul(other.value)}
}

func (q Quantity) LessThan(other Quantity) bool { return q.value.LessThan(other.value) }
func (q Quantity) Equal(other Quantity) bool    { return q.value.Equal(other.value) }
func (q Quantity) IsZero() bool                 { return q.value.IsZero() }
func (q Quantity) IsPositive() bool             { return q.value.IsPositive() }
func (q Quantity) String() string               { return q.value.String() }

func (q Quantity) MarshalJSON() ([]byte, error) { return q.value.MarshalJSON() }

func (q *Quantity) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	parsed, err := NewQuantity(d)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// Money is a currency-tagged, non-negative decimal amount.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// NewMoney builds a Money value, rejecting negative amounts. An empty
// currency defaults to USD.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if amount.IsNegative() {
		return Money{}, fmt.Errorf("amount cannot be negative: %s", amount)
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// MustMoney parses a decimal literal as a USD amount and panics on bad
// input. Seed and test data only.
func MustMoney(s string) Money {
	m, err := NewMoney(decimal.RequireFromString(s), DefaultCurrency)
	if err != nil {
		panic(err)
	}
	return m
}

// ZeroMoney is the additive identity for totals.
func ZeroMoney() Money {
	return Money{Amount: decimal.Zero, Currency: DefaultCurrency}
}

func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency, other.Currency)
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// MulQuantity computes price × quantity, keeping the currency.
func (m Money) MulQuantity(q Quantity) Money {
	return Money{Amount: m.Amount.Mul(q.Decimal()), Currency: m.Currency}
}

func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

func (m Money) IsZero() bool { return m.Amount.IsZero() }

func (m Money) String() string { return m.Amount.String() + " " + m.Currency }
