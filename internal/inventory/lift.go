package inventory

import (
	"context"
	"database/sql"

	"github.com/erazemk/zaloga/internal/events"
	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/store"
)

const (
	opCreateLift = "create_lift"
	opReturnLift = "return_lift"
	opClearLift  = "clear_lift"
	opGetLift    = "get_lift"
)

// LiftLine is one item and quantity of a lift request or a damage report.
type LiftLine struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

// ReturnResult is the outcome of returning a lift.
type ReturnResult struct {
	Lift     *model.Lift `json:"lift"`
	Restored int         `json:"restored"`
	Damaged  int         `json:"damaged"`
}

// CreateLift withdraws every line from central stock into a new active lift
// for the actor's unit. Either all lines are withdrawn or none are.
func (e *Engine) CreateLift(ctx context.Context, actorID, unitID int64, lines []LiftLine) (lift *model.Lift, err error) {
	defer func() { err = e.done(opCreateLift, err) }()

	if actorID <= 0 {
		return nil, unauthorized(opCreateLift)
	}
	if unitID <= 0 {
		return nil, invalid(opCreateLift, "unit is required")
	}
	if len(lines) == 0 {
		return nil, invalid(opCreateLift, "at least one item is required")
	}
	seen := make(map[int64]bool, len(lines))
	for _, line := range lines {
		if line.ItemID <= 0 {
			return nil, invalid(opCreateLift, "item id must be positive")
		}
		if line.Quantity <= 0 {
			return nil, &Error{Op: opCreateLift, Kind: ErrInvalidInput, ItemID: line.ItemID, Msg: "quantity must be positive"}
		}
		if seen[line.ItemID] {
			return nil, &Error{Op: opCreateLift, Kind: ErrInvalidInput, ItemID: line.ItemID, Msg: "duplicate item"}
		}
		seen[line.ItemID] = true
	}

	var changed []*model.Item
	err = e.inTx(ctx, opCreateLift, func(tx *sql.Tx) error {
		if err := e.requireActor(ctx, tx, opCreateLift, actorID); err != nil {
			return err
		}
		if err := ownedUnit(ctx, tx, opCreateLift, actorID, unitID); err != nil {
			return err
		}

		active, err := store.GetActiveLift(ctx, tx, actorID, unitID)
		if err != nil {
			return err
		}
		if active != nil {
			return &Error{Op: opCreateLift, Kind: ErrConflict, UnitID: unitID, LiftID: active.ID, Msg: "unit already has an active lift"}
		}

		liftID, err := store.InsertLift(ctx, tx, actorID, unitID)
		if err != nil {
			return err
		}

		for _, line := range lines {
			after, ok, err := store.DecrementItemIfEnough(ctx, tx, line.ItemID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return shortage(ctx, tx, line)
			}

			if _, err := store.InsertLiftItem(ctx, tx, liftID, line.ItemID, line.Quantity); err != nil {
				return err
			}

			if _, err := store.AppendHistory(ctx, tx, model.HistoryEntry{
				ItemID:         line.ItemID,
				UserID:         actorID,
				QuantityBefore: after + line.Quantity,
				QuantityDelta:  -line.Quantity,
				QuantityAfter:  after,
				Reason:         model.ReasonLift,
				LiftID:         &liftID,
			}); err != nil {
				return err
			}
		}

		changed, err = snapshots(ctx, tx, lines)
		if err != nil {
			return err
		}

		lift, err = store.GetLift(ctx, tx, liftID)
		return err
	})
	if err != nil {
		return nil, err
	}

	var evs []events.Event
	for _, item := range changed {
		evs = append(evs, itemEvents(item)...)
	}
	evs = append(evs, liftEvent(ActionLiftCreated, lift))

	e.metrics.Moved(model.ReasonLift, -lift.TotalQuantity())
	e.publish(ctx, evs)
	return lift, nil
}

// ReturnLift closes the actor's active lift. For every lifted item the
// damaged quantity is recorded and the rest is restored to central stock.
// A lift that does not exist, is not the actor's, or is no longer active is
// reported as ErrNotFound.
func (e *Engine) ReturnLift(ctx context.Context, actorID, liftID int64, damaged []LiftLine) (res *ReturnResult, err error) {
	defer func() { err = e.done(opReturnLift, err) }()

	if actorID <= 0 {
		return nil, unauthorized(opReturnLift)
	}
	if liftID <= 0 {
		return nil, &Error{Op: opReturnLift, Kind: ErrNotFound, LiftID: liftID}
	}
	damagedQty := make(map[int64]int, len(damaged))
	for _, line := range damaged {
		if line.ItemID <= 0 {
			return nil, invalid(opReturnLift, "item id must be positive")
		}
		if line.Quantity < 0 {
			return nil, &Error{Op: opReturnLift, Kind: ErrInvalidInput, ItemID: line.ItemID, Msg: "damaged quantity must not be negative"}
		}
		if _, dup := damagedQty[line.ItemID]; dup {
			return nil, &Error{Op: opReturnLift, Kind: ErrInvalidInput, ItemID: line.ItemID, Msg: "duplicate item"}
		}
		damagedQty[line.ItemID] = line.Quantity
	}

	var (
		result  ReturnResult
		changed []*model.Item
	)
	err = e.inTx(ctx, opReturnLift, func(tx *sql.Tx) error {
		if err := e.requireActor(ctx, tx, opReturnLift, actorID); err != nil {
			return err
		}

		lift, err := store.GetUserLift(ctx, tx, actorID, liftID)
		if err != nil {
			return err
		}
		if lift == nil || lift.Status != model.LiftStatusActive {
			return &Error{Op: opReturnLift, Kind: ErrNotFound, LiftID: liftID}
		}

		lifted := make(map[int64]bool, len(lift.Items))
		for _, li := range lift.Items {
			lifted[li.ItemID] = true
		}
		for itemID := range damagedQty {
			if !lifted[itemID] {
				return &Error{Op: opReturnLift, Kind: ErrInvalidInput, ItemID: itemID, LiftID: liftID, Msg: "item is not part of the lift"}
			}
		}

		var restoredLines []LiftLine
		for _, li := range lift.Items {
			d := damagedQty[li.ItemID]
			if d > li.Quantity {
				return &Error{
					Op:        opReturnLift,
					Kind:      ErrInvalidInput,
					ItemID:    li.ItemID,
					LiftID:    liftID,
					Available: li.Quantity,
					Requested: d,
					Msg:       "damaged quantity exceeds lifted quantity",
				}
			}

			if d > 0 {
				if _, err := store.AppendDamagedRecord(ctx, tx, model.DamagedItemRecord{
					UserID:   actorID,
					UnitID:   lift.UnitID,
					ItemID:   li.ItemID,
					LiftID:   &liftID,
					Quantity: d,
				}); err != nil {
					return err
				}
				result.Damaged += d
			}

			restore := li.Quantity - d
			if restore > 0 {
				if err := restock(ctx, tx, actorID, liftID, li.ItemID, restore, model.ReasonReturn); err != nil {
					return err
				}
				result.Restored += restore
				restoredLines = append(restoredLines, LiftLine{ItemID: li.ItemID, Quantity: restore})
			}
		}

		if err := store.MarkLiftReturned(ctx, tx, liftID); err != nil {
			return err
		}

		changed, err = snapshots(ctx, tx, restoredLines)
		if err != nil {
			return err
		}

		result.Lift, err = store.GetLift(ctx, tx, liftID)
		return err
	})
	if err != nil {
		return nil, err
	}

	var evs []events.Event
	for _, item := range changed {
		evs = append(evs, itemEvents(item)...)
	}
	evs = append(evs, liftEvent(ActionLiftReturned, result.Lift))

	e.metrics.Moved(model.ReasonReturn, result.Restored)
	e.publish(ctx, evs)
	return &result, nil
}

// ClearLift deletes the actor's active lift on a unit. Unless the engine was
// built with WithRestoreOnClear(false), the lifted quantities go back into
// stock first.
func (e *Engine) ClearLift(ctx context.Context, actorID, unitID int64) (err error) {
	defer func() { err = e.done(opClearLift, err) }()

	if actorID <= 0 {
		return unauthorized(opClearLift)
	}
	if unitID <= 0 {
		return &Error{Op: opClearLift, Kind: ErrNotFound, UnitID: unitID}
	}

	var (
		lift    *model.Lift
		changed []*model.Item
	)
	err = e.inTx(ctx, opClearLift, func(tx *sql.Tx) error {
		if err := e.requireActor(ctx, tx, opClearLift, actorID); err != nil {
			return err
		}

		var err error
		lift, err = store.GetActiveLift(ctx, tx, actorID, unitID)
		if err != nil {
			return err
		}
		if lift == nil {
			return &Error{Op: opClearLift, Kind: ErrNotFound, UnitID: unitID, Msg: "no active lift"}
		}

		if e.restoreOnClear {
			var lines []LiftLine
			for _, li := range lift.Items {
				if err := restock(ctx, tx, actorID, lift.ID, li.ItemID, li.Quantity, model.ReasonClear); err != nil {
					return err
				}
				lines = append(lines, LiftLine{ItemID: li.ItemID, Quantity: li.Quantity})
			}
			if changed, err = snapshots(ctx, tx, lines); err != nil {
				return err
			}
		}

		return store.DeleteLift(ctx, tx, lift.ID)
	})
	if err != nil {
		return err
	}

	var evs []events.Event
	for _, item := range changed {
		evs = append(evs, itemEvents(item)...)
	}
	evs = append(evs, liftEvent(ActionLiftCleared, lift))

	if e.restoreOnClear {
		e.metrics.Moved(model.ReasonClear, lift.TotalQuantity())
	}
	e.publish(ctx, evs)
	return nil
}

// GetLift returns one of the actor's lifts with its items.
func (e *Engine) GetLift(ctx context.Context, actorID, liftID int64) (*model.Lift, error) {
	if actorID <= 0 {
		return nil, unauthorized(opGetLift)
	}

	lift, err := store.GetUserLift(ctx, e.db, actorID, liftID)
	if err != nil {
		return nil, classify(opGetLift, err)
	}
	if lift == nil {
		return nil, &Error{Op: opGetLift, Kind: ErrNotFound, LiftID: liftID}
	}
	return lift, nil
}

// ownedUnit fails with ErrNotFound unless unitID exists and belongs to actorID.
func ownedUnit(ctx context.Context, q store.Querier, op string, actorID, unitID int64) error {
	unit, err := store.GetUnit(ctx, q, unitID)
	if err != nil {
		return err
	}
	if unit == nil || unit.UserID != actorID {
		return &Error{Op: op, Kind: ErrNotFound, UnitID: unitID}
	}
	return nil
}

// shortage explains why a conditional decrement did not apply.
func shortage(ctx context.Context, q store.Querier, line LiftLine) error {
	item, err := store.GetItem(ctx, q, line.ItemID)
	if err != nil {
		return err
	}
	if item == nil {
		return &Error{Op: opCreateLift, Kind: ErrNotFound, ItemID: line.ItemID}
	}
	return &Error{
		Op:        opCreateLift,
		Kind:      ErrInsufficientStock,
		ItemID:    line.ItemID,
		Available: item.Quantity,
		Requested: line.Quantity,
	}
}

// restock puts quantity of an item back into stock and ledgers it.
func restock(ctx context.Context, q store.Querier, actorID, liftID, itemID int64, quantity int, reason string) error {
	after, err := store.IncrementItem(ctx, q, itemID, quantity)
	if err != nil {
		return err
	}

	_, err = store.AppendHistory(ctx, q, model.HistoryEntry{
		ItemID:         itemID,
		UserID:         actorID,
		QuantityBefore: after - quantity,
		QuantityDelta:  quantity,
		QuantityAfter:  after,
		Reason:         reason,
		LiftID:         &liftID,
	})
	return err
}

func snapshots(ctx context.Context, q store.Querier, lines []LiftLine) ([]*model.Item, error) {
	items := make([]*model.Item, 0, len(lines))
	for _, line := range lines {
		item, err := store.GetItem(ctx, q, line.ItemID)
		if err != nil {
			return nil, err
		}
		if item != nil {
			items = append(items, item)
		}
	}
	return items, nil
}
