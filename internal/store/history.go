package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/zaloga/internal/model"
)

const historyColumns = `h.id, h.item_id, h.user_id, h.quantity_before, h.quantity_delta, h.quantity_after,
	h.reason, h.lift_id, h.created_at, i.name, u.username`

const historyFrom = ` FROM history h
	JOIN items i ON i.id = h.item_id
	JOIN users u ON u.id = h.user_id`

func scanHistory(row rowScanner) (*model.HistoryEntry, error) {
	h := &model.HistoryEntry{}
	var liftID sql.NullInt64
	if err := row.Scan(&h.ID, &h.ItemID, &h.UserID, &h.QuantityBefore, &h.QuantityDelta,
		&h.QuantityAfter, &h.Reason, &liftID, &h.CreatedAt, &h.ItemName, &h.Username); err != nil {
		return nil, err
	}
	h.LiftID = int64Ptr(liftID)
	return h, nil
}

// AppendHistory appends one ledger row. The row is rejected unless
// before + delta == after and both ends are non-negative.
func AppendHistory(ctx context.Context, q Querier, entry model.HistoryEntry) (*model.HistoryEntry, error) {
	if !entry.Balanced() {
		return nil, fmt.Errorf("appending history: unbalanced entry %d%+d=%d",
			entry.QuantityBefore, entry.QuantityDelta, entry.QuantityAfter)
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO history (item_id, user_id, quantity_before, quantity_delta, quantity_after, reason, lift_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ItemID, entry.UserID, entry.QuantityBefore, entry.QuantityDelta, entry.QuantityAfter,
		entry.Reason, nullInt64(entry.LiftID),
	)
	if err != nil {
		return nil, fmt.Errorf("appending history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting history id: %w", err)
	}

	return GetHistoryEntry(ctx, q, id)
}

// GetHistoryEntry returns a ledger row by ID, or nil if it does not exist.
func GetHistoryEntry(ctx context.Context, q Querier, id int64) (*model.HistoryEntry, error) {
	h, err := scanHistory(q.QueryRowContext(ctx,
		`SELECT `+historyColumns+historyFrom+` WHERE h.id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting history entry: %w", err)
	}
	return h, nil
}

// LatestHistory returns the most recent ledger row for an item, or nil if the
// item has none.
func LatestHistory(ctx context.Context, q Querier, itemID int64) (*model.HistoryEntry, error) {
	h, err := scanHistory(q.QueryRowContext(ctx,
		`SELECT `+historyColumns+historyFrom+` WHERE h.item_id = ? ORDER BY h.id DESC LIMIT 1`, itemID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting latest history: %w", err)
	}
	return h, nil
}

// ListItemHistory returns the ledger rows of an item, newest first.
func ListItemHistory(ctx context.Context, q Querier, itemID int64) ([]model.HistoryEntry, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+historyColumns+historyFrom+` WHERE h.item_id = ? ORDER BY h.id DESC`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing item history: %w", err)
	}
	defer rows.Close()

	var entries []model.HistoryEntry
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		entries = append(entries, *h)
	}
	return entries, rows.Err()
}
