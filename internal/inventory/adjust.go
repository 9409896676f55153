package inventory

import (
	"context"
	"database/sql"
	"math"

	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/store"
)

const opAdjust = "adjust"

// AdjustResult is the outcome of a successful adjustment.
type AdjustResult struct {
	Item  *model.Item         `json:"item"`
	Entry *model.HistoryEntry `json:"entry"`
}

// Adjust changes an item's quantity by delta on behalf of actorID and
// appends the matching ledger entry. A delta that would take the quantity
// below zero fails with ErrInsufficientStock and changes nothing.
func (e *Engine) Adjust(ctx context.Context, itemID int64, delta int, actorID int64) (res *AdjustResult, err error) {
	defer func() { err = e.done(opAdjust, err) }()

	if actorID <= 0 {
		return nil, unauthorized(opAdjust)
	}
	if delta == 0 {
		return nil, invalid(opAdjust, "delta must not be zero")
	}
	if delta == math.MinInt {
		return nil, invalid(opAdjust, "delta out of range")
	}
	if itemID <= 0 {
		return nil, &Error{Op: opAdjust, Kind: ErrNotFound, ItemID: itemID}
	}

	var result AdjustResult
	err = e.inTx(ctx, opAdjust, func(tx *sql.Tx) error {
		if err := e.requireActor(ctx, tx, opAdjust, actorID); err != nil {
			return err
		}

		item, err := store.GetItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return &Error{Op: opAdjust, Kind: ErrNotFound, ItemID: itemID}
		}

		if delta > 0 && item.Quantity > math.MaxInt-delta {
			return &Error{Op: opAdjust, Kind: ErrInvalidInput, ItemID: itemID, Msg: "quantity too large"}
		}

		after := item.Quantity + delta
		if after < 0 {
			return &Error{
				Op:        opAdjust,
				Kind:      ErrInsufficientStock,
				ItemID:    itemID,
				Available: item.Quantity,
				Requested: -delta,
			}
		}

		if err := store.SetItemQuantity(ctx, tx, itemID, item.Quantity, after); err != nil {
			return err
		}

		result.Entry, err = store.AppendHistory(ctx, tx, model.HistoryEntry{
			ItemID:         itemID,
			UserID:         actorID,
			QuantityBefore: item.Quantity,
			QuantityDelta:  delta,
			QuantityAfter:  after,
			Reason:         model.ReasonAdjust,
		})
		if err != nil {
			return err
		}

		result.Item, err = store.GetItem(ctx, tx, itemID)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.metrics.Moved(model.ReasonAdjust, delta)
	e.publish(ctx, itemEvents(result.Item))
	return &result, nil
}
