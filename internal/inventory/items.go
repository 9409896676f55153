package inventory

import (
	"context"
	"database/sql"
	"strings"

	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/store"
)

const (
	opCreateItem   = "create_item"
	opSetThreshold = "set_threshold"
	opGetItem      = "get_item"
	opListItems    = "list_items"
	opItemHistory  = "item_history"
	opDamaged      = "damaged_records"
)

// NewItem describes an item to create.
type NewItem struct {
	Name              string `json:"name"`
	CategoryID        *int64 `json:"category_id,omitempty"`
	LocationID        *int64 `json:"location_id,omitempty"`
	Quantity          int    `json:"quantity"`
	LowStockThreshold int    `json:"low_stock_threshold"`
}

// CreateItem adds an item to the central pool. A non-zero initial quantity
// is recorded as a create entry in the ledger.
func (e *Engine) CreateItem(ctx context.Context, actorID int64, in NewItem) (item *model.Item, err error) {
	defer func() { err = e.done(opCreateItem, err) }()

	if actorID <= 0 {
		return nil, unauthorized(opCreateItem)
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, invalid(opCreateItem, "name is required")
	}
	if in.Quantity < 0 {
		return nil, invalid(opCreateItem, "quantity must not be negative")
	}
	if in.LowStockThreshold < 0 {
		return nil, invalid(opCreateItem, "low stock threshold must not be negative")
	}

	err = e.inTx(ctx, opCreateItem, func(tx *sql.Tx) error {
		if err := e.requireActor(ctx, tx, opCreateItem, actorID); err != nil {
			return err
		}

		var err error
		item, err = store.CreateItem(ctx, tx, in.Name, in.CategoryID, in.LocationID, in.Quantity, in.LowStockThreshold)
		if err != nil {
			return err
		}

		if in.Quantity > 0 {
			_, err = store.AppendHistory(ctx, tx, model.HistoryEntry{
				ItemID:         item.ID,
				UserID:         actorID,
				QuantityBefore: 0,
				QuantityDelta:  in.Quantity,
				QuantityAfter:  in.Quantity,
				Reason:         model.ReasonCreate,
			})
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	e.metrics.Moved(model.ReasonCreate, in.Quantity)
	e.publish(ctx, itemEvents(item))
	return item, nil
}

// SetLowStockThreshold configures the quantity at or below which an item is
// reported as low on stock.
func (e *Engine) SetLowStockThreshold(ctx context.Context, actorID, itemID int64, threshold int) (item *model.Item, err error) {
	defer func() { err = e.done(opSetThreshold, err) }()

	if actorID <= 0 {
		return nil, unauthorized(opSetThreshold)
	}
	if threshold < 0 {
		return nil, invalid(opSetThreshold, "threshold must not be negative")
	}
	if itemID <= 0 {
		return nil, &Error{Op: opSetThreshold, Kind: ErrNotFound, ItemID: itemID}
	}

	err = e.inTx(ctx, opSetThreshold, func(tx *sql.Tx) error {
		if err := e.requireActor(ctx, tx, opSetThreshold, actorID); err != nil {
			return err
		}

		ok, err := store.SetLowStockThreshold(ctx, tx, itemID, threshold)
		if err != nil {
			return err
		}
		if !ok {
			return &Error{Op: opSetThreshold, Kind: ErrNotFound, ItemID: itemID}
		}

		item, err = store.GetItem(ctx, tx, itemID)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, itemEvents(item))
	return item, nil
}

// GetItem returns a snapshot of one item.
func (e *Engine) GetItem(ctx context.Context, itemID int64) (*model.Item, error) {
	item, err := store.GetItem(ctx, e.db, itemID)
	if err != nil {
		return nil, classify(opGetItem, err)
	}
	if item == nil {
		return nil, &Error{Op: opGetItem, Kind: ErrNotFound, ItemID: itemID}
	}
	return item, nil
}

// ItemDetail is an item together with its most recent ledger entry.
type ItemDetail struct {
	*model.Item
	LastChange *model.HistoryEntry `json:"last_change,omitempty"`
}

// ItemDetail returns the item and the ledger entry that set its current
// quantity. LastChange is nil for an item that never held stock.
func (e *Engine) ItemDetail(ctx context.Context, itemID int64) (*ItemDetail, error) {
	item, err := e.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	last, err := store.LatestHistory(ctx, e.db, itemID)
	if err != nil {
		return nil, classify(opGetItem, err)
	}
	return &ItemDetail{Item: item, LastChange: last}, nil
}

// ListItems returns every item ordered by name.
func (e *Engine) ListItems(ctx context.Context) ([]model.Item, error) {
	items, err := store.ListItems(ctx, e.db, false)
	if err != nil {
		return nil, classify(opListItems, err)
	}
	return items, nil
}

// LowStockItems returns the items currently at or below their threshold.
func (e *Engine) LowStockItems(ctx context.Context) ([]model.Item, error) {
	items, err := store.ListItems(ctx, e.db, true)
	if err != nil {
		return nil, classify(opListItems, err)
	}
	return items, nil
}

// ItemHistory returns the ledger of an item, newest first.
func (e *Engine) ItemHistory(ctx context.Context, itemID int64) ([]model.HistoryEntry, error) {
	if _, err := e.GetItem(ctx, itemID); err != nil {
		return nil, err
	}

	entries, err := store.ListItemHistory(ctx, e.db, itemID)
	if err != nil {
		return nil, classify(opItemHistory, err)
	}
	return entries, nil
}

// DamagedRecords lists damaged item records, optionally for one item.
func (e *Engine) DamagedRecords(ctx context.Context, itemID int64) ([]model.DamagedItemRecord, error) {
	records, err := store.ListDamagedRecords(ctx, e.db, itemID, 0)
	if err != nil {
		return nil, classify(opDamaged, err)
	}
	return records, nil
}
