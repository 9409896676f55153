package inventory

import (
	"context"
	"database/sql"
	"strings"

	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/store"
)

const (
	opCreateUnit = "create_unit"
	opUnits      = "list_units"
	opUnitLifts  = "unit_lifts"
)

// CreateUnit registers a unit owned by the actor.
func (e *Engine) CreateUnit(ctx context.Context, actorID int64, name string) (unit *model.Unit, err error) {
	defer func() { err = e.done(opCreateUnit, err) }()

	if actorID <= 0 {
		return nil, unauthorized(opCreateUnit)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid(opCreateUnit, "name is required")
	}

	err = e.inTx(ctx, opCreateUnit, func(tx *sql.Tx) error {
		if err := e.requireActor(ctx, tx, opCreateUnit, actorID); err != nil {
			return err
		}
		var err error
		unit, err = store.CreateUnit(ctx, tx, actorID, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return unit, nil
}

// Units lists the actor's units.
func (e *Engine) Units(ctx context.Context, actorID int64) ([]model.Unit, error) {
	if actorID <= 0 {
		return nil, unauthorized(opUnits)
	}
	units, err := store.ListUserUnits(ctx, e.db, actorID)
	if err != nil {
		return nil, classify(opUnits, err)
	}
	return units, nil
}

// UnitLifts returns the lift history of one of the actor's units, newest
// first. Lift items are not loaded.
func (e *Engine) UnitLifts(ctx context.Context, actorID, unitID int64) ([]model.Lift, error) {
	if actorID <= 0 {
		return nil, unauthorized(opUnitLifts)
	}
	if err := ownedUnit(ctx, e.db, opUnitLifts, actorID, unitID); err != nil {
		return nil, classify(opUnitLifts, err)
	}

	lifts, err := store.ListUnitLifts(ctx, e.db, actorID, unitID)
	if err != nil {
		return nil, classify(opUnitLifts, err)
	}
	return lifts, nil
}
