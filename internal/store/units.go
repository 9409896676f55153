package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/zaloga/internal/model"
)

// CreateUnit creates a unit owned by userID.
func CreateUnit(ctx context.Context, q Querier, userID int64, name string) (*model.Unit, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO units (name, user_id) VALUES (?, ?)`, name, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating unit: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting unit id: %w", err)
	}

	return GetUnit(ctx, q, id)
}

// GetUnit returns a unit by ID, or nil if it does not exist.
func GetUnit(ctx context.Context, q Querier, id int64) (*model.Unit, error) {
	u := &model.Unit{}
	err := q.QueryRowContext(ctx,
		`SELECT id, name, user_id, created_at FROM units WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.UserID, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting unit: %w", err)
	}
	return u, nil
}

// ListUserUnits returns the units owned by a user ordered by name.
func ListUserUnits(ctx context.Context, q Querier, userID int64) ([]model.Unit, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, name, user_id, created_at FROM units WHERE user_id = ? ORDER BY name, id`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing units: %w", err)
	}
	defer rows.Close()

	var units []model.Unit
	for rows.Next() {
		var u model.Unit
		if err := rows.Scan(&u.ID, &u.Name, &u.UserID, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning unit: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// CreateCategory creates an item category.
func CreateCategory(ctx context.Context, q Querier, name string) (*model.Category, error) {
	c := &model.Category{}
	result, err := q.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}
	if c.ID, err = result.LastInsertId(); err != nil {
		return nil, fmt.Errorf("getting category id: %w", err)
	}
	err = q.QueryRowContext(ctx,
		`SELECT name, created_at FROM categories WHERE id = ?`, c.ID,
	).Scan(&c.Name, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting category: %w", err)
	}
	return c, nil
}

// CreateLocation creates a storage location.
func CreateLocation(ctx context.Context, q Querier, name string) (*model.Location, error) {
	l := &model.Location{}
	result, err := q.ExecContext(ctx, `INSERT INTO locations (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("creating location: %w", err)
	}
	if l.ID, err = result.LastInsertId(); err != nil {
		return nil, fmt.Errorf("getting location id: %w", err)
	}
	err = q.QueryRowContext(ctx,
		`SELECT name, created_at FROM locations WHERE id = ?`, l.ID,
	).Scan(&l.Name, &l.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting location: %w", err)
	}
	return l, nil
}
