package inventory

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/erazemk/zaloga/internal/events"
	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/store"
)

func TestLiftAndReturnScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.item(t, "A", 4, 0)

	lift, err := f.engine.CreateLift(ctx, f.user.ID, f.unit.ID, []LiftLine{{ItemID: a.ID, Quantity: 3}})
	if err != nil {
		t.Fatalf("CreateLift: %v", err)
	}
	if lift.Status != model.LiftStatusActive || len(lift.Items) != 1 || lift.Items[0].Quantity != 3 {
		t.Errorf("unexpected lift %+v", lift)
	}
	if got := f.quantity(t, a.ID); got != 1 {
		t.Errorf("expected A at 1 after lift, got %d", got)
	}

	entries := f.history(t, a.ID)
	if entries[0].Reason != model.ReasonLift || entries[0].QuantityDelta != -3 ||
		entries[0].LiftID == nil || *entries[0].LiftID != lift.ID {
		t.Errorf("unexpected lift ledger entry %+v", entries[0])
	}
	if n := len(f.events.Named(events.InventoryChanged)); n != 1 {
		t.Errorf("expected 1 inventory.changed event, got %d", n)
	}
	f.events.Reset()

	res, err := f.engine.ReturnLift(ctx, f.user.ID, lift.ID, []LiftLine{{ItemID: a.ID, Quantity: 1}})
	if err != nil {
		t.Fatalf("ReturnLift: %v", err)
	}
	if res.Restored != 2 || res.Damaged != 1 {
		t.Errorf("expected 2 restored and 1 damaged, got %+v", res)
	}
	if res.Lift.Status != model.LiftStatusReturned || res.Lift.ReturnedAt == nil {
		t.Errorf("expected returned lift, got %+v", res.Lift)
	}
	for _, li := range res.Lift.Items {
		if li.Status != model.LiftStatusReturned {
			t.Errorf("expected returned lift item, got %+v", li)
		}
	}
	if got := f.quantity(t, a.ID); got != 3 {
		t.Errorf("expected A at 3 after return, got %d", got)
	}

	records, err := f.engine.DamagedRecords(ctx, a.ID)
	if err != nil {
		t.Fatalf("DamagedRecords: %v", err)
	}
	if len(records) != 1 || records[0].Quantity != 1 || records[0].UnitID != f.unit.ID ||
		records[0].LiftID == nil || *records[0].LiftID != lift.ID {
		t.Errorf("unexpected damaged records %+v", records)
	}

	changes := f.events.Named(events.InventoryChanged)
	if len(changes) != 1 || changes[0].Payload.(InventoryChange).Action != ActionLiftReturned {
		t.Errorf("unexpected inventory.changed events %+v", changes)
	}
	f.assertLedgerMatches(t, a.ID)
}

func TestCreateLiftIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.item(t, "A", 10, 0)
	b := f.item(t, "B", 1, 0)
	c := f.item(t, "C", 10, 0)

	_, err := f.engine.CreateLift(ctx, f.user.ID, f.unit.ID, []LiftLine{
		{ItemID: a.ID, Quantity: 5},
		{ItemID: b.ID, Quantity: 2},
		{ItemID: c.ID, Quantity: 5},
	})
	assertKind(t, err, ErrInsufficientStock)

	var e *Error
	if !errors.As(err, &e) || e.ItemID != b.ID || e.Available != 1 || e.Requested != 2 {
		t.Errorf("expected error naming item B, got %+v", e)
	}

	for _, it := range []*model.Item{a, b, c} {
		if got := f.quantity(t, it.ID); got != it.Quantity {
			t.Errorf("item %s changed to %d", it.Name, got)
		}
		if n := len(f.history(t, it.ID)); n != 1 {
			t.Errorf("item %s has %d ledger entries, want only the create entry", it.Name, n)
		}
	}

	lifts, err := f.engine.UnitLifts(ctx, f.user.ID, f.unit.ID)
	if err != nil {
		t.Fatalf("UnitLifts: %v", err)
	}
	if len(lifts) != 0 {
		t.Errorf("expected no lifts, got %d", len(lifts))
	}
	var liftItems int
	f.db.QueryRow(`SELECT COUNT(*) FROM lift_items`).Scan(&liftItems)
	if liftItems != 0 {
		t.Errorf("expected no lift items, got %d", liftItems)
	}
	if n := len(f.events.Events()); n != 0 {
		t.Errorf("expected no events, got %d", n)
	}
}

func TestCreateLiftMissingItemIsNotFound(t *testing.T) {
	f := newFixture(t)
	a := f.item(t, "A", 10, 0)

	_, err := f.engine.CreateLift(context.Background(), f.user.ID, f.unit.ID, []LiftLine{
		{ItemID: a.ID, Quantity: 1},
		{ItemID: 999, Quantity: 1},
	})
	assertKind(t, err, ErrNotFound)
	if got := f.quantity(t, a.ID); got != 10 {
		t.Errorf("expected A unchanged, got %d", got)
	}
}

func TestCreateLiftValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.item(t, "A", 10, 0)

	other, _ := store.CreateUser(ctx, f.db, "bob", "hash", model.RoleUser)
	otherUnit, err := f.engine.CreateUnit(ctx, other.ID, "Truck")
	if err != nil {
		t.Fatalf("CreateUnit: %v", err)
	}

	tests := []struct {
		name    string
		actorID int64
		unitID  int64
		lines   []LiftLine
		kind    error
	}{
		{"no actor", 0, f.unit.ID, []LiftLine{{a.ID, 1}}, ErrUnauthorized},
		{"unknown actor", 999, f.unit.ID, []LiftLine{{a.ID, 1}}, ErrUnauthorized},
		{"no unit", f.user.ID, 0, []LiftLine{{a.ID, 1}}, ErrInvalidInput},
		{"empty", f.user.ID, f.unit.ID, nil, ErrInvalidInput},
		{"zero quantity", f.user.ID, f.unit.ID, []LiftLine{{a.ID, 0}}, ErrInvalidInput},
		{"negative quantity", f.user.ID, f.unit.ID, []LiftLine{{a.ID, -2}}, ErrInvalidInput},
		{"duplicate item", f.user.ID, f.unit.ID, []LiftLine{{a.ID, 1}, {a.ID, 2}}, ErrInvalidInput},
		{"missing unit", f.user.ID, 999, []LiftLine{{a.ID, 1}}, ErrNotFound},
		{"someone else's unit", f.user.ID, otherUnit.ID, []LiftLine{{a.ID, 1}}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.CreateLift(ctx, tt.actorID, tt.unitID, tt.lines)
			assertKind(t, err, tt.kind)
		})
	}

	if got := f.quantity(t, a.ID); got != 10 {
		t.Errorf("expected A unchanged, got %d", got)
	}
}

func TestCreateLiftConflictsWithActiveLift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.item(t, "A", 10, 0)

	if _, err := f.engine.CreateLift(ctx, f.user.ID, f.unit.ID, []LiftLine{{a.ID, 2}}); err != nil {
		t.Fatalf("CreateLift: %v", err)
	}
	_, err := f.engine.CreateLift(ctx, f.user.ID, f.unit.ID, []LiftLine{{a.ID, 2}})
	assertKind(t, err, ErrConflict)

	if got := f.quantity(t, a.ID); got != 8 {
		t.Errorf("expected 8, got %d", got)
	}
}

func TestReturnLiftAccountingCloses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.item(t, "A", 20, 0)
	b := f.item(t, "B", 20, 0)
	c := f.item(t, "C", 20, 0)

	lift, err := f.engine.CreateLift(ctx, f.user.ID, f.unit.ID, []LiftLine{{a.ID, 5}, {b.ID, 4}, {c.ID, 3}})
	if err != nil {
		t.Fatalf("CreateLift: %v", err)
	}

	res, err := f.engine.ReturnLift(ctx, f.user.ID, lift.ID, []LiftLine{{a.ID, 5}, {b.ID, 1}, {c.ID, 0}})
	if err != nil {
		t.Fatalf("ReturnLift: %v", err)
	}
	if res.Restored+res.Damaged != lift.TotalQuantity() {
		t.Errorf("restored %d + damaged %d != withdrawn %d", res.Restored, res.Damaged, lift.TotalQuantity())
	}

	want := map[int64]int{a.ID: 15, b.ID: 19, c.ID: 20}
	for id, qty := range want {
		if got := f.quantity(t, id); got != qty {
			t.Errorf("item %d: expected %d, got %d", id, qty, got)
		}
		f.assertLedgerMatches(t, id)
	}
}

func TestReturnLiftRejectsBadDamage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.item(t, "A", 10, 0)
	b := f.item(t, "B", 10, 0)
	outside := f.item(t, "Outside", 10, 0)

	lift, err := f.engine.CreateLift(ctx, f.user.ID, f.unit.ID, []LiftLine{{a.ID, 3}, {b.ID, 3}})
	if err != nil {
		t.Fatalf("CreateLift: %v", err)
	}

	tests := []struct {
		name    string
		damaged []LiftLine
	}{
		{"exceeds lifted", []LiftLine{{a.ID, 1}, {b.ID, 4}}},
		{"not in lift", []LiftLine{{outside.ID, 1}}},
		{"negative", []LiftLine{{a.ID, -1}}},
		{"duplicate", []LiftLine{{a.ID, 1}, {a.ID, 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.ReturnLift(ctx, f.user.ID, lift.ID, tt.damaged)
			assertKind(t, err, ErrInvalidInput)
		})
	}

	// Nothing from the failed returns persisted.
	if got := f.quantity(t, a.ID); got != 7 {
		t.Errorf("expected A at 7, got %d", got)
	}
	records, _ := f.engine.DamagedRecords(ctx, 0)
	if len(records) != 0 {
		t.Errorf("expected no damaged records, got %d", len(records))
	}
	still, err := f.engine.GetLift(ctx, f.user.ID, lift.ID)
	if err != nil || still.Status != model.LiftStatusActive {
		t.Errorf("expected lift still active, got %+v, %v", still, err)
	}
}

func TestReturnLiftNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.item(t, "A", 10, 0)

	lift, err := f.engine.CreateLift(ctx, f.user.ID, f.unit.ID, []LiftLine{{a.ID, 3}})
	if err != nil {
		t.Fatalf("CreateLift: %v", err)
	}

	other, _ := store.CreateUser(ctx, f.db, "bob", "hash", model.RoleUser)

	_, err = f.engine.ReturnLift(ctx, other.ID, lift.ID, nil)
	assertKind(t, err, ErrNotFound)

	_, err = f.engine.ReturnLift(ctx, f.user.ID, 999, nil)
	assertKind(t, err, ErrNotFound)

	if _, err := f.engine.ReturnLift(ctx, f.user.ID, lift.ID, nil); err != nil {
		t.Fatalf("ReturnLift: %v", err)
	}
	_, err = f.engine.ReturnLift(ctx, f.user.ID, lift.ID, nil)
	assertKind(t, err, ErrNotFound)

	if got := f.quantity(t, a.ID); got != 10 {
		t.Errorf("expected A back at 10 after a single return, got %d", got)
	}
}

func TestReturnedLiftFreesUnitForNextLift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.item(t, "A", 10, 0)

	first, err := f.engine.CreateLift(ctx, f.user.ID, f.unit.ID, []LiftLine{{a.ID, 3}})
	if err != nil {
		t.Fatalf("CreateLift: %v", err)
	}
	if _, err := f.engine.ReturnLift(ctx, f.user.ID, first.ID, nil); err != nil {
		t.Fatalf("ReturnLift: %v", err)
	}
	second, err := f.engine.CreateLift(ctx, f.user.ID, f.unit.ID, []LiftLine{{a.ID, 4}})
	if err != nil {
		t.Fatalf("second CreateLift: %v", err)
	}

	lifts, err := f.engine.UnitLifts(ctx, f.user.ID, f.unit.ID)
	if err != nil {
		t.Fatalf("UnitLifts: %v", err)
	}
	if len(lifts) != 2 || lifts[0].ID != second.ID {
		t.Errorf("expected newest lift first, got %+v", lifts)
	}
}

func TestClearLiftRestoresStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.item(t, "A", 10, 0)

	lift, err := f.engine.CreateLift(ctx, f.user.ID, f.unit.ID, []LiftLine{{a.ID, 4}})
	if err != nil {
		t.Fatalf("CreateLift: %v", err)
	}
	f.events.Reset()

	if err := f.engine.ClearLift(ctx, f.user.ID, f.unit.ID); err != nil {
		t.Fatalf("ClearLift: %v", err)
	}

	if got := f.quantity(t, a.ID); got != 10 {
		t.Errorf("expected A restored to 10, got %d", got)
	}
	entries := f.history(t, a.ID)
	if entries[0].Reason != model.ReasonClear || entries[0].QuantityDelta != 4 {
		t.Errorf("unexpected clear ledger entry %+v", entries[0])
	}
	f.assertLedgerMatches(t, a.ID)

	_, err = f.engine.GetLift(ctx, f.user.ID, lift.ID)
	assertKind(t, err, ErrNotFound)

	changes := f.events.Named(events.InventoryChanged)
	if len(changes) != 1 || changes[0].Payload.(InventoryChange).Action != ActionLiftCleared {
		t.Errorf("unexpected inventory.changed events %+v", changes)
	}

	err = f.engine.ClearLift(ctx, f.user.ID, f.unit.ID)
	assertKind(t, err, ErrNotFound)
}

func TestClearLiftWithoutRestore(t *testing.T) {
	f := newFixture(t, WithRestoreOnClear(false))
	ctx := context.Background()
	a := f.item(t, "A", 10, 0)

	if _, err := f.engine.CreateLift(ctx, f.user.ID, f.unit.ID, []LiftLine{{a.ID, 4}}); err != nil {
		t.Fatalf("CreateLift: %v", err)
	}
	if err := f.engine.ClearLift(ctx, f.user.ID, f.unit.ID); err != nil {
		t.Fatalf("ClearLift: %v", err)
	}

	if got := f.quantity(t, a.ID); got != 6 {
		t.Errorf("expected A to stay at 6, got %d", got)
	}
	f.assertLedgerMatches(t, a.ID)

	// The unit is free again.
	if _, err := f.engine.CreateLift(ctx, f.user.ID, f.unit.ID, []LiftLine{{a.ID, 1}}); err != nil {
		t.Errorf("CreateLift after clear: %v", err)
	}
}

func TestClearLiftIsOwnerScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.item(t, "A", 10, 0)

	if _, err := f.engine.CreateLift(ctx, f.user.ID, f.unit.ID, []LiftLine{{a.ID, 4}}); err != nil {
		t.Fatalf("CreateLift: %v", err)
	}
	other, _ := store.CreateUser(ctx, f.db, "bob", "hash", model.RoleUser)

	err := f.engine.ClearLift(ctx, other.ID, f.unit.ID)
	assertKind(t, err, ErrNotFound)
	if got := f.quantity(t, a.ID); got != 6 {
		t.Errorf("expected A at 6, got %d", got)
	}
}

func TestUnitLiftsIsOwnerScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other, _ := store.CreateUser(ctx, f.db, "bob", "hash", model.RoleUser)

	_, err := f.engine.UnitLifts(ctx, other.ID, f.unit.ID)
	assertKind(t, err, ErrNotFound)

	units, err := f.engine.Units(ctx, other.ID)
	if err != nil {
		t.Fatalf("Units: %v", err)
	}
	if len(units) != 0 {
		t.Errorf("expected bob to own no units, got %+v", units)
	}
}

func TestLiftLowStockEvents(t *testing.T) {
	f := newFixture(t)
	a := f.item(t, "A", 10, 5)
	b := f.item(t, "B", 10, 5)

	_, err := f.engine.CreateLift(context.Background(), f.user.ID, f.unit.ID, []LiftLine{{a.ID, 6}, {b.ID, 1}})
	if err != nil {
		t.Fatalf("CreateLift: %v", err)
	}

	low := f.events.Named(events.LowStock)
	if len(low) != 1 || low[0].Key != itemKey(a.ID) {
		t.Errorf("expected one low stock event for A, got %+v", low)
	}
	if n := len(f.events.Named(events.ItemChanged)); n != 2 {
		t.Errorf("expected 2 item.changed events, got %d", n)
	}
}

func TestReturnLiftRejectsOverflowingRestock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.item(t, "A", math.MaxInt, 0)

	lift, err := f.engine.CreateLift(ctx, f.user.ID, f.unit.ID, []LiftLine{{ItemID: a.ID, Quantity: 2}})
	if err != nil {
		t.Fatalf("CreateLift: %v", err)
	}
	if _, err := f.engine.Adjust(ctx, a.ID, 1, f.user.ID); err != nil {
		t.Fatalf("Adjust: %v", err)
	}

	_, err = f.engine.ReturnLift(ctx, f.user.ID, lift.ID, nil)
	assertKind(t, err, ErrInvalidInput)

	if got := f.quantity(t, a.ID); got != math.MaxInt-1 {
		t.Errorf("expected quantity %d after rollback, got %d", math.MaxInt-1, got)
	}
	got, err := f.engine.GetLift(ctx, f.user.ID, lift.ID)
	if err != nil || got.Status != model.LiftStatusActive {
		t.Errorf("expected lift still active, got %+v, %v", got, err)
	}
	f.assertLedgerMatches(t, a.ID)
}
