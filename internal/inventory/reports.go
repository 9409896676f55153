package inventory

import (
	"context"

	"github.com/erazemk/zaloga/internal/store"
)

const (
	opTopLowStock = "top_low_stock"
	opTopConsumed = "top_consumed"
)

// Report limits.
const (
	DefaultReportLimit = 10
	MaxReportLimit     = 100
)

// ItemCount is one ranked report row.
type ItemCount = store.ItemCount

// TopLowStock ranks items by how many ledger entries left them at or below
// their current threshold. A zero limit means DefaultReportLimit.
func (e *Engine) TopLowStock(ctx context.Context, limit int) ([]ItemCount, error) {
	limit, err := reportLimit(opTopLowStock, limit)
	if err != nil {
		return nil, err
	}
	rows, err := store.TopLowStock(ctx, e.db, limit)
	if err != nil {
		return nil, classify(opTopLowStock, err)
	}
	return rows, nil
}

// TopConsumed ranks items by the total quantity taken out of stock, lifts
// included. A zero limit means DefaultReportLimit.
func (e *Engine) TopConsumed(ctx context.Context, limit int) ([]ItemCount, error) {
	limit, err := reportLimit(opTopConsumed, limit)
	if err != nil {
		return nil, err
	}
	rows, err := store.TopConsumed(ctx, e.db, limit)
	if err != nil {
		return nil, classify(opTopConsumed, err)
	}
	return rows, nil
}

func reportLimit(op string, limit int) (int, error) {
	switch {
	case limit == 0:
		return DefaultReportLimit, nil
	case limit < 0 || limit > MaxReportLimit:
		return 0, invalid(op, "limit must be between 1 and %d", MaxReportLimit)
	}
	return limit, nil
}
