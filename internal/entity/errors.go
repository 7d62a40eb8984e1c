package entity

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ValidationError is a single business-rule violation, reported to the
// caller as a rejection rather than a system failure.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string { return e.Reason }

// ValidationErrors collects every violation found in one request so the
// caller sees the complete list in a single rejection.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	reasons := make([]string, len(e))
	for i, v := range e {
		reasons[i] = v.Reason
	}
	return strings.Join(reasons, "; ")
}

func (e *ValidationErrors) Add(format string, args ...any) {
	*e = append(*e, ValidationError{Reason: fmt.Sprintf(format, args...)})
}

// OrNil returns the collected errors as an error, or nil when none were
// recorded.
func (e ValidationErrors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// NotFoundError reports a referenced entity that does not exist. For the
// stock reactor this is fatal for the whole event; replenishment will not
// fix it.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string { return e.Kind + " not found: " + e.ID }

// InsufficientStockError reports a sufficiency check that failed, either on
// product stock at order time or on ingredient stock at fulfillment time.
// Unlike a not-found error it may resolve itself once stock is replenished.
type InsufficientStockError struct {
	Name    string
	message string
}

func (e *InsufficientStockError) Error() string { return e.message }

func InsufficientProductStock(name string) *InsufficientStockError {
	return &InsufficientStockError{Name: name, message: "insufficient stock for product: " + name}
}

func InsufficientIngredientStock(name string) *InsufficientStockError {
	return &InsufficientStockError{Name: name, message: "insufficient stock of " + name}
}

// PublishError reports an order that was persisted but whose creation event
// could not be announced. The order itself stays valid; publication is
// retried independently.
type PublishError struct {
	OrderID uuid.UUID
	Err     error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("order %s created but not announced: %v", e.OrderID, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// StorageError reports a persistence failure that survived the adapter's
// bounded retries.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }
