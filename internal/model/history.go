package model

import "time"

// HistoryEntry is one immutable row of the quantity ledger.
type HistoryEntry struct {
	ID             int64     `json:"id"`
	ItemID         int64     `json:"item_id"`
	UserID         int64     `json:"user_id"`
	QuantityBefore int       `json:"quantity_before"`
	QuantityDelta  int       `json:"quantity_delta"`
	QuantityAfter  int       `json:"quantity_after"`
	Reason         string    `json:"reason"`
	LiftID         *int64    `json:"lift_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`

	// Joined fields (not always populated).
	ItemName string `json:"item_name,omitempty"`
	Username string `json:"username,omitempty"`
}

// History reasons.
const (
	ReasonCreate = "create"
	ReasonAdjust = "adjust"
	ReasonLift   = "lift"
	ReasonReturn = "return"
	ReasonClear  = "clear"
)

// Balanced reports whether before + delta == after with both ends non-negative.
func (h HistoryEntry) Balanced() bool {
	return h.QuantityBefore >= 0 && h.QuantityAfter >= 0 &&
		h.QuantityBefore+h.QuantityDelta == h.QuantityAfter
}
