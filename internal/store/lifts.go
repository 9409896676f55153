package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/zaloga/internal/model"
)

const liftColumns = `l.id, l.user_id, l.unit_id, l.status, l.created_at, l.returned_at, un.name`

const liftFrom = ` FROM lifts l JOIN units un ON un.id = l.unit_id`

func scanLift(row rowScanner) (*model.Lift, error) {
	l := &model.Lift{}
	if err := row.Scan(&l.ID, &l.UserID, &l.UnitID, &l.Status, &l.CreatedAt, &l.ReturnedAt, &l.UnitName); err != nil {
		return nil, err
	}
	return l, nil
}

// InsertLift creates an active lift for a user and unit.
func InsertLift(ctx context.Context, q Querier, userID, unitID int64) (int64, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO lifts (user_id, unit_id, status) VALUES (?, ?, ?)`,
		userID, unitID, model.LiftStatusActive,
	)
	if err != nil {
		return 0, fmt.Errorf("creating lift: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting lift id: %w", err)
	}
	return id, nil
}

// InsertLiftItem adds an active line to a lift.
func InsertLiftItem(ctx context.Context, q Querier, liftID, itemID int64, quantity int) (int64, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO lift_items (lift_id, item_id, quantity, status) VALUES (?, ?, ?, ?)`,
		liftID, itemID, quantity, model.LiftStatusActive,
	)
	if err != nil {
		return 0, fmt.Errorf("creating lift item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting lift item id: %w", err)
	}
	return id, nil
}

// GetLift returns a lift with its items, or nil if it does not exist.
func GetLift(ctx context.Context, q Querier, id int64) (*model.Lift, error) {
	return getLift(ctx, q, `SELECT `+liftColumns+liftFrom+` WHERE l.id = ?`, id)
}

// GetUserLift returns a lift owned by userID, or nil if there is no such lift
// or it belongs to someone else.
func GetUserLift(ctx context.Context, q Querier, userID, id int64) (*model.Lift, error) {
	return getLift(ctx, q, `SELECT `+liftColumns+liftFrom+` WHERE l.id = ? AND l.user_id = ?`, id, userID)
}

// GetActiveLift returns the active lift of a user on a unit, or nil.
func GetActiveLift(ctx context.Context, q Querier, userID, unitID int64) (*model.Lift, error) {
	return getLift(ctx, q,
		`SELECT `+liftColumns+liftFrom+`
		 WHERE l.user_id = ? AND l.unit_id = ? AND l.status = ?
		 ORDER BY l.id DESC LIMIT 1`,
		userID, unitID, model.LiftStatusActive,
	)
}

func getLift(ctx context.Context, q Querier, query string, args ...any) (*model.Lift, error) {
	l, err := scanLift(q.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting lift: %w", err)
	}

	l.Items, err = ListLiftItems(ctx, q, l.ID)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ListLiftItems returns the lines of a lift ordered by item.
func ListLiftItems(ctx context.Context, q Querier, liftID int64) ([]model.LiftItem, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT li.id, li.lift_id, li.item_id, li.quantity, li.status, i.name
		 FROM lift_items li
		 JOIN items i ON i.id = li.item_id
		 WHERE li.lift_id = ?
		 ORDER BY li.item_id`, liftID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing lift items: %w", err)
	}
	defer rows.Close()

	var items []model.LiftItem
	for rows.Next() {
		var li model.LiftItem
		if err := rows.Scan(&li.ID, &li.LiftID, &li.ItemID, &li.Quantity, &li.Status, &li.ItemName); err != nil {
			return nil, fmt.Errorf("scanning lift item: %w", err)
		}
		items = append(items, li)
	}
	return items, rows.Err()
}

// ListUnitLifts returns the lifts a user made for a unit, newest first.
// Lift items are not loaded.
func ListUnitLifts(ctx context.Context, q Querier, userID, unitID int64) ([]model.Lift, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+liftColumns+liftFrom+`
		 WHERE l.unit_id = ? AND l.user_id = ?
		 ORDER BY l.created_at DESC, l.id DESC`,
		unitID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing unit lifts: %w", err)
	}
	defer rows.Close()

	var lifts []model.Lift
	for rows.Next() {
		l, err := scanLift(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning lift: %w", err)
		}
		lifts = append(lifts, *l)
	}
	return lifts, rows.Err()
}

// MarkLiftReturned sets a lift and all its items to returned. It only touches
// an active lift and returns an error if none was updated.
func MarkLiftReturned(ctx context.Context, q Querier, id int64) error {
	result, err := q.ExecContext(ctx,
		`UPDATE lifts SET status = ?, returned_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		model.LiftStatusReturned, id, model.LiftStatusActive,
	)
	if err != nil {
		return fmt.Errorf("updating lift status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating lift status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("updating lift status: lift %d is not active", id)
	}

	if _, err := q.ExecContext(ctx,
		`UPDATE lift_items SET status = ? WHERE lift_id = ?`,
		model.LiftStatusReturned, id,
	); err != nil {
		return fmt.Errorf("updating lift item status: %w", err)
	}
	return nil
}

// DeleteLift removes a lift and its items.
func DeleteLift(ctx context.Context, q Querier, id int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM lift_items WHERE lift_id = ?`, id); err != nil {
		return fmt.Errorf("deleting lift items: %w", err)
	}
	result, err := q.ExecContext(ctx, `DELETE FROM lifts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting lift: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting lift: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("deleting lift: lift %d not found", id)
	}
	return nil
}
