package store

import (
	"context"
	"testing"

	"github.com/erazemk/zaloga/internal/db"
	"github.com/erazemk/zaloga/internal/model"
)

func TestAppendAndListHistory(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "alice", "hash", model.RoleManager)
	item, _ := CreateItem(ctx, database, "Gauze", nil, nil, 10, 5)

	entry, err := AppendHistory(ctx, database, model.HistoryEntry{
		ItemID: item.ID, UserID: user.ID,
		QuantityBefore: 10, QuantityDelta: -6, QuantityAfter: 4,
		Reason: model.ReasonAdjust,
	})
	if err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}
	if entry.ID == 0 || entry.ItemName != "Gauze" || entry.Username != "alice" {
		t.Errorf("unexpected entry %+v", entry)
	}

	AppendHistory(ctx, database, model.HistoryEntry{
		ItemID: item.ID, UserID: user.ID,
		QuantityBefore: 4, QuantityDelta: 2, QuantityAfter: 6,
		Reason: model.ReasonAdjust,
	})

	latest, _ := LatestHistory(ctx, database, item.ID)
	if latest == nil || latest.QuantityAfter != 6 {
		t.Errorf("expected latest after=6, got %+v", latest)
	}

	all, _ := ListItemHistory(ctx, database, item.ID)
	if len(all) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(all))
	}
	if all[0].QuantityAfter != 6 {
		t.Errorf("expected newest entry first, got %+v", all[0])
	}
}

func TestAppendHistoryRejectsUnbalanced(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "alice", "hash", model.RoleManager)
	item, _ := CreateItem(ctx, database, "Gauze", nil, nil, 10, 5)

	_, err := AppendHistory(ctx, database, model.HistoryEntry{
		ItemID: item.ID, UserID: user.ID,
		QuantityBefore: 10, QuantityDelta: -6, QuantityAfter: 5,
		Reason: model.ReasonAdjust,
	})
	if err == nil {
		t.Error("expected error for unbalanced entry")
	}

	// The CHECK constraint holds even when the Go guard is bypassed.
	_, err = database.ExecContext(ctx,
		`INSERT INTO history (item_id, user_id, quantity_before, quantity_delta, quantity_after, reason)
		 VALUES (?, ?, 2, -5, -3, 'adjust')`, item.ID, user.ID)
	if err == nil {
		t.Error("expected CHECK constraint to reject negative quantity_after")
	}
}

func TestHistoryIsAppendOnly(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "alice", "hash", model.RoleManager)
	item, _ := CreateItem(ctx, database, "Gauze", nil, nil, 10, 5)
	entry, _ := AppendHistory(ctx, database, model.HistoryEntry{
		ItemID: item.ID, UserID: user.ID,
		QuantityBefore: 0, QuantityDelta: 10, QuantityAfter: 10,
		Reason: model.ReasonCreate,
	})

	if _, err := database.ExecContext(ctx,
		`UPDATE history SET quantity_delta = 11, quantity_after = 11 WHERE id = ?`, entry.ID); err == nil {
		t.Error("expected update of history to fail")
	}
	if _, err := database.ExecContext(ctx, `DELETE FROM history WHERE id = ?`, entry.ID); err == nil {
		t.Error("expected delete of history to fail")
	}
}
