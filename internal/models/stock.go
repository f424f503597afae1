package models

import (
	"time"

	"github.com/harrylevesque/campusclinic/internal/validate"
)

type StockCategory string

const (
	CategoryMedicine  StockCategory = "medicine"
	CategorySupplies  StockCategory = "supplies"
	CategoryEquipment StockCategory = "equipment"
)

type StockItem struct {
	ID             ID            `json:"id,omitempty"`
	Name           string        `json:"name"`
	Category       StockCategory `json:"category"`
	Quantity       int           `json:"quantity"`
	Unit           string        `json:"unit,omitempty"`
	ExpirationDate Date          `json:"expiration_date"`
	UpdatedAt      time.Time     `json:"updated_at,omitzero"`
}

func (s StockItem) Validate() error {
	var c validate.Checker
	c.Required("name", s.Name)
	c.OneOf("category", string(s.Category), string(CategoryMedicine), string(CategorySupplies), string(CategoryEquipment))
	c.Check(s.Quantity >= 0, "quantity", "Quantity cannot be negative.")
	return c.Err()
}

// Expired reports whether the item is past its expiration date on now's day.
func (s StockItem) Expired(now time.Time) bool {
	if s.ExpirationDate.IsZero() {
		return false
	}
	return s.ExpirationDate.Before(NewDate(now.Date()))
}

// ExpiresWithin reports whether the item expires before now+window. Expired
// items are included.
func (s StockItem) ExpiresWithin(now time.Time, window time.Duration) bool {
	if s.ExpirationDate.IsZero() {
		return false
	}
	return s.ExpirationDate.Time.Before(now.Add(window))
}
