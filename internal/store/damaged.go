package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/zaloga/internal/model"
)

// AppendDamagedRecord records a damaged quantity of an item returned from a unit.
func AppendDamagedRecord(ctx context.Context, q Querier, rec model.DamagedItemRecord) (int64, error) {
	if rec.Quantity <= 0 {
		return 0, fmt.Errorf("recording damaged item: quantity must be positive")
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO damaged_items (user_id, unit_id, item_id, lift_id, quantity)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.UserID, rec.UnitID, rec.ItemID, nullInt64(rec.LiftID), rec.Quantity,
	)
	if err != nil {
		return 0, fmt.Errorf("recording damaged item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting damaged item id: %w", err)
	}
	return id, nil
}

// ListDamagedRecords returns damaged item records, newest first. A zero
// itemID or liftID disables that filter.
func ListDamagedRecords(ctx context.Context, q Querier, itemID, liftID int64) ([]model.DamagedItemRecord, error) {
	query := `SELECT id, user_id, unit_id, item_id, lift_id, quantity, created_at
	          FROM damaged_items WHERE 1=1`
	var args []any

	if itemID > 0 {
		query += ` AND item_id = ?`
		args = append(args, itemID)
	}
	if liftID > 0 {
		query += ` AND lift_id = ?`
		args = append(args, liftID)
	}
	query += ` ORDER BY id DESC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing damaged items: %w", err)
	}
	defer rows.Close()

	var records []model.DamagedItemRecord
	for rows.Next() {
		var r model.DamagedItemRecord
		var lift sql.NullInt64
		if err := rows.Scan(&r.ID, &r.UserID, &r.UnitID, &r.ItemID, &lift, &r.Quantity, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning damaged item: %w", err)
		}
		r.LiftID = int64Ptr(lift)
		records = append(records, r)
	}
	return records, rows.Err()
}
