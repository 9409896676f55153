package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/erazemk/zaloga/internal/model"
)

const itemColumns = `i.id, i.name, i.category_id, i.location_id, i.quantity, i.low_stock_threshold,
	i.created_at, i.updated_at, COALESCE(c.name, ''), COALESCE(l.name, '')`

const itemFrom = ` FROM items i
	LEFT JOIN categories c ON c.id = i.category_id
	LEFT JOIN locations l ON l.id = i.location_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var categoryID, locationID sql.NullInt64
	if err := row.Scan(&item.ID, &item.Name, &categoryID, &locationID, &item.Quantity,
		&item.LowStockThreshold, &item.CreatedAt, &item.UpdatedAt,
		&item.CategoryName, &item.LocationName); err != nil {
		return nil, err
	}
	item.CategoryID = int64Ptr(categoryID)
	item.LocationID = int64Ptr(locationID)
	item.LowStock = item.IsLowStock()
	return item, nil
}

// CreateItem inserts a new item holding the given initial quantity.
func CreateItem(ctx context.Context, q Querier, name string, categoryID, locationID *int64, quantity, threshold int) (*model.Item, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO items (name, category_id, location_id, quantity, low_stock_threshold)
		 VALUES (?, ?, ?, ?, ?)`,
		name, nullInt64(categoryID), nullInt64(locationID), quantity, threshold,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, q, id)
}

// GetItem returns an item by ID, or nil if it does not exist.
func GetItem(ctx context.Context, q Querier, id int64) (*model.Item, error) {
	item, err := scanItem(q.QueryRowContext(ctx,
		`SELECT `+itemColumns+itemFrom+` WHERE i.id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns all items ordered by name. With lowOnly set, only items at
// or below their low-stock threshold are returned.
func ListItems(ctx context.Context, q Querier, lowOnly bool) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + itemFrom
	if lowOnly {
		query += ` WHERE i.quantity <= i.low_stock_threshold`
	}
	query += ` ORDER BY i.name, i.id`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// SetItemQuantity writes a new quantity, conditioned on the item still holding
// expected. It returns ErrQuantityChanged if the condition does not hold.
func SetItemQuantity(ctx context.Context, q Querier, id int64, expected, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("setting item quantity: negative quantity %d", quantity)
	}

	result, err := q.ExecContext(ctx,
		`UPDATE items SET quantity = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND quantity = ?`,
		quantity, id, expected,
	)
	if err != nil {
		return fmt.Errorf("setting item quantity: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("setting item quantity: %w", err)
	}
	if n == 0 {
		return ErrQuantityChanged
	}
	return nil
}

// DecrementItemIfEnough subtracts quantity from the item only if it holds at
// least that much. It returns the new quantity and whether the decrement was
// applied; ok is false both for a missing item and for insufficient stock.
func DecrementItemIfEnough(ctx context.Context, q Querier, id int64, quantity int) (after int, ok bool, err error) {
	err = q.QueryRowContext(ctx,
		`UPDATE items SET quantity = quantity - ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND quantity >= ?
		 RETURNING quantity`,
		quantity, id, quantity,
	).Scan(&after)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("decrementing item quantity: %w", err)
	}
	return after, true, nil
}

// IncrementItem adds quantity to the item and returns the new quantity. It
// returns ErrQuantityOverflow if the result would not fit in an int.
func IncrementItem(ctx context.Context, q Querier, id int64, quantity int) (int, error) {
	if quantity < 0 {
		return 0, fmt.Errorf("incrementing item quantity: negative increment %d", quantity)
	}

	var after int
	err := q.QueryRowContext(ctx,
		`UPDATE items SET quantity = quantity + ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND quantity <= ?
		 RETURNING quantity`,
		quantity, id, math.MaxInt-quantity,
	).Scan(&after)
	if err == sql.ErrNoRows {
		item, gerr := GetItem(ctx, q, id)
		if gerr != nil {
			return 0, fmt.Errorf("incrementing item quantity: %w", gerr)
		}
		if item != nil {
			return 0, fmt.Errorf("incrementing item %d: %w", id, ErrQuantityOverflow)
		}
		return 0, fmt.Errorf("incrementing item quantity: item %d not found", id)
	}
	if err != nil {
		return 0, fmt.Errorf("incrementing item quantity: %w", err)
	}
	return after, nil
}

// SetLowStockThreshold updates an item's threshold. It reports false if the
// item does not exist.
func SetLowStockThreshold(ctx context.Context, q Querier, id int64, threshold int) (bool, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE items SET low_stock_threshold = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		threshold, id,
	)
	if err != nil {
		return false, fmt.Errorf("setting low stock threshold: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("setting low stock threshold: %w", err)
	}
	return n > 0, nil
}
