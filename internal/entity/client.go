package entity

import (
	"strings"

	"github.com/google/uuid"
)

// Client is the customer placing an order. Created once per order and
// immutable afterwards.
type Client struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone"`
}

// Validate checks that all text fields are non-blank after trimming.
func (c Client) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(c.Name) == "" {
		errs.Add("client name is required")
	}
	if strings.TrimSpace(c.Email) == "" {
		errs.Add("client email is required")
	}
	if strings.TrimSpace(c.Phone) == "" {
		errs.Add("client phone is required")
	}
	return errs.OrNil()
}
