package store

import (
	"context"
	"fmt"
)

// ItemCount is one row of a ranked report.
type ItemCount struct {
	ItemID   int64  `json:"item_id"`
	ItemName string `json:"item_name"`
	Count    int    `json:"count"`
}

// TopLowStock ranks items by the number of ledger rows that left them at or
// below their current low-stock threshold.
func TopLowStock(ctx context.Context, q Querier, limit int) ([]ItemCount, error) {
	return rankItems(ctx, q, "top low stock",
		`SELECT h.item_id, i.name, COUNT(*) AS n
		 FROM history h
		 JOIN items i ON i.id = h.item_id
		 WHERE h.quantity_after <= i.low_stock_threshold
		 GROUP BY h.item_id, i.name
		 ORDER BY n DESC, i.name
		 LIMIT ?`, limit)
}

// TopConsumed ranks items by the total quantity removed from stock.
func TopConsumed(ctx context.Context, q Querier, limit int) ([]ItemCount, error) {
	return rankItems(ctx, q, "top consumed",
		`SELECT h.item_id, i.name, -SUM(h.quantity_delta) AS n
		 FROM history h
		 JOIN items i ON i.id = h.item_id
		 WHERE h.quantity_delta < 0
		 GROUP BY h.item_id, i.name
		 ORDER BY n DESC, i.name
		 LIMIT ?`, limit)
}

func rankItems(ctx context.Context, q Querier, name, query string, limit int) ([]ItemCount, error) {
	rows, err := q.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", name, err)
	}
	defer rows.Close()

	var out []ItemCount
	for rows.Next() {
		var c ItemCount
		if err := rows.Scan(&c.ItemID, &c.ItemName, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", name, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
