package model

import "time"

// Item is a stock-keeping entry in the central pool. Quantity only changes
// through the inventory engine.
type Item struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	CategoryID        *int64    `json:"category_id,omitempty"`
	LocationID        *int64    `json:"location_id,omitempty"`
	Quantity          int       `json:"quantity"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	LowStock          bool      `json:"low_stock"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Joined fields (not always populated).
	CategoryName string `json:"category_name,omitempty"`
	LocationName string `json:"location_name,omitempty"`
}

// IsLowStock reports whether the item is at or below its threshold.
func (i Item) IsLowStock() bool {
	return i.Quantity <= i.LowStockThreshold
}

// Category groups items.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Location is where central stock of an item is kept.
type Location struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Unit is a mobile consumption site owned by a user.
type Unit struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
