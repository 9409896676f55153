package model

import "time"

// Lift is a batch of items withdrawn from central stock to a unit.
type Lift struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	UnitID     int64      `json:"unit_id"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	Items      []LiftItem `json:"items,omitempty"`

	// Joined fields (not always populated).
	UnitName string `json:"unit_name,omitempty"`
}

// LiftItem is one item line of a lift.
type LiftItem struct {
	ID       int64  `json:"id"`
	LiftID   int64  `json:"lift_id"`
	ItemID   int64  `json:"item_id"`
	Quantity int    `json:"quantity"`
	Status   string `json:"status"`

	ItemName string `json:"item_name,omitempty"`
}

// Lift statuses.
const (
	LiftStatusActive   = "active"
	LiftStatusReturned = "returned"
)

// TotalQuantity returns the sum of all line quantities.
func (l Lift) TotalQuantity() int {
	total := 0
	for _, li := range l.Items {
		total += li.Quantity
	}
	return total
}

// DamagedItemRecord records the part of a returned lift that did not go back
// into stock.
type DamagedItemRecord struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	UnitID    int64     `json:"unit_id"`
	ItemID    int64     `json:"item_id"`
	LiftID    *int64    `json:"lift_id,omitempty"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}
