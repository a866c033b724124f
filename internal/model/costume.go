package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// Costume is a secondhand costume submission. All listing and contact fields
// are stored verbatim; price is text.
type Costume struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	City        string    `json:"city"`
	ImageURL    string    `json:"imageUrl"`
	Title       string    `json:"title"`
	Price       string    `json:"price"`
	Size        string    `json:"size"`
	Style       string    `json:"style"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

// Costume statuses. Only StatusApproved gates public visibility; any other
// string is accepted and stored as-is.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusSold     = "sold"
)

// Statuses lists the values offered by the admin edit form.
var Statuses = []string{StatusPending, StatusApproved, StatusRejected, StatusSold}

// StatusOptions returns Statuses, followed by current when it is not one of
// them, so an edit form always round-trips the stored status.
func StatusOptions(current string) []string {
	if slices.Contains(Statuses, current) {
		return Statuses
	}
	return append(slices.Clip(Statuses), current)
}

// SellerName joins the submitter's first and last name.
func (c Costume) SellerName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}

// Public reports whether the costume is visible in the public catalog.
func (c Costume) Public() bool {
	return c.Status == StatusApproved
}

// UnmarshalJSON decodes a costume, accepting price as either a JSON string or
// a JSON number. Numbers keep their literal text.
func (c *Costume) UnmarshalJSON(data []byte) error {
	type plain Costume
	aux := struct {
		*plain
		Price json.RawMessage `json:"price"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	price := bytes.TrimSpace(aux.Price)
	switch {
	case len(price) == 0 || bytes.Equal(price, []byte("null")):
		return nil
	case price[0] == '"':
		return json.Unmarshal(price, &c.Price)
	}

	dec := json.NewDecoder(bytes.NewReader(price))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("decoding price: %w", err)
	}
	n, ok := v.(json.Number)
	if !ok {
		return fmt.Errorf("price must be a string or number, got %s", price)
	}
	c.Price = n.String()
	return nil
}
