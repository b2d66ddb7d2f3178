package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book is a catalog title together with its lendable inventory.
// ExternalID is the catalog identifier used by clients; it is also the primary key.
// Price is the per-day rental rate and is null for titles that were never priced.
// AvailableQuantity never exceeds StockQuantity and never drops below zero.
type Book struct {
	ExternalID        int64
	Title             string
	Author            string
	Price             decimal.NullDecimal
	StockQuantity     int
	AvailableQuantity int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HasAvailableCopies reports whether at least one copy can be lent out.
func (b Book) HasAvailableCopies() bool {
	return b.AvailableQuantity > 0
}
