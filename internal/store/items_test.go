package store

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"testing"

	"github.com/erazemk/zaloga/internal/db"
)

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	cat, _ := CreateCategory(ctx, database, "Medical")
	loc, _ := CreateLocation(ctx, database, "Shelf A")

	item, err := CreateItem(ctx, database, "Gauze", &cat.ID, &loc.ID, 10, 5)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.Quantity != 10 || item.LowStockThreshold != 5 {
		t.Errorf("unexpected item %+v", item)
	}
	if item.CategoryName != "Medical" || item.LocationName != "Shelf A" {
		t.Errorf("expected joined names, got %q/%q", item.CategoryName, item.LocationName)
	}
	if item.LowStock {
		t.Error("expected item not to be low on stock")
	}

	missing, err := GetItem(ctx, database, 999)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing item")
	}
}

func TestListItemsLowOnly(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateItem(ctx, database, "Bandage", nil, nil, 2, 5)
	CreateItem(ctx, database, "Gloves", nil, nil, 50, 5)

	all, _ := ListItems(ctx, database, false)
	if len(all) != 2 {
		t.Fatalf("expected 2 items, got %d", len(all))
	}

	low, _ := ListItems(ctx, database, true)
	if len(low) != 1 || low[0].Name != "Bandage" || !low[0].LowStock {
		t.Errorf("expected only Bandage to be low, got %+v", low)
	}
}

func TestSetItemQuantityConditional(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, "Gauze", nil, nil, 10, 0)

	if err := SetItemQuantity(ctx, database, item.ID, 10, 7); err != nil {
		t.Fatalf("SetItemQuantity: %v", err)
	}

	// Stale expectation.
	err := SetItemQuantity(ctx, database, item.ID, 10, 3)
	if !errors.Is(err, ErrQuantityChanged) {
		t.Errorf("expected ErrQuantityChanged, got %v", err)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.Quantity != 7 {
		t.Errorf("expected quantity 7, got %d", got.Quantity)
	}
}

func TestQuantityCheckConstraint(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, "Gauze", nil, nil, 1, 0)

	_, err := database.ExecContext(ctx, `UPDATE items SET quantity = -1 WHERE id = ?`, item.ID)
	if err == nil {
		t.Error("expected CHECK constraint to reject negative quantity")
	}
}

func TestDecrementItemIfEnough(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, "Gauze", nil, nil, 4, 0)

	after, ok, err := DecrementItemIfEnough(ctx, database, item.ID, 3)
	if err != nil || !ok || after != 1 {
		t.Fatalf("DecrementItemIfEnough = %d, %v, %v; want 1, true, nil", after, ok, err)
	}

	_, ok, err = DecrementItemIfEnough(ctx, database, item.ID, 2)
	if err != nil || ok {
		t.Fatalf("expected insufficient decrement to be skipped, got ok=%v err=%v", ok, err)
	}

	_, ok, _ = DecrementItemIfEnough(ctx, database, 999, 1)
	if ok {
		t.Error("expected decrement of missing item to be skipped")
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.Quantity != 1 {
		t.Errorf("expected quantity 1, got %d", got.Quantity)
	}
}

func TestIncrementItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, "Gauze", nil, nil, 1, 0)

	after, err := IncrementItem(ctx, database, item.ID, 2)
	if err != nil || after != 3 {
		t.Fatalf("IncrementItem = %d, %v; want 3, nil", after, err)
	}

	if _, err := IncrementItem(ctx, database, 999, 1); err == nil {
		t.Error("expected error incrementing missing item")
	}
}

func TestIncrementItemOverflow(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, "Gauze", nil, nil, math.MaxInt-1, 0)

	if _, err := IncrementItem(ctx, database, item.ID, 2); !errors.Is(err, ErrQuantityOverflow) {
		t.Fatalf("expected ErrQuantityOverflow, got %v", err)
	}
	got, _ := GetItem(ctx, database, item.ID)
	if got.Quantity != math.MaxInt-1 {
		t.Errorf("expected quantity unchanged, got %d", got.Quantity)
	}

	after, err := IncrementItem(ctx, database, item.ID, 1)
	if err != nil || after != math.MaxInt {
		t.Fatalf("IncrementItem = %d, %v; want %d, nil", after, err, math.MaxInt)
	}
}

func TestSetLowStockThreshold(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, "Gauze", nil, nil, 4, 0)

	ok, err := SetLowStockThreshold(ctx, database, item.ID, 5)
	if err != nil || !ok {
		t.Fatalf("SetLowStockThreshold = %v, %v", ok, err)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if !got.LowStock {
		t.Error("expected item to be low on stock after raising threshold")
	}

	ok, _ = SetLowStockThreshold(ctx, database, 999, 5)
	if ok {
		t.Error("expected false for missing item")
	}
}

func TestWithTxRollsBack(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, "Gauze", nil, nil, 10, 0)

	boom := errors.New("boom")
	err := WithTx(ctx, database, func(tx *sql.Tx) error {
		if _, _, err := DecrementItemIfEnough(ctx, tx, item.ID, 5); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.Quantity != 10 {
		t.Errorf("expected rollback to keep quantity 10, got %d", got.Quantity)
	}
}
