// Package inventory is the inventory engine: quantity adjustments, lifts to
// units and the queries around them. Every mutation runs in a single store
// transaction and appends to the history ledger; change events are published
// only after the transaction commits.
package inventory

import (
	"context"
	"database/sql"
	"log/slog"
	"strconv"
	"time"

	"github.com/erazemk/zaloga/internal/events"
	"github.com/erazemk/zaloga/internal/metrics"
	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/store"
)

// DefaultPublishTimeout bounds how long the engine waits on the sink after a
// commit.
const DefaultPublishTimeout = 2 * time.Second

// Engine runs inventory operations against the ledger store.
type Engine struct {
	db             *sql.DB
	sink           events.Sink
	logger         *slog.Logger
	metrics        *metrics.Metrics
	restoreOnClear bool
	publishTimeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics sets the metrics the engine records into.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithRestoreOnClear controls whether clearing an active lift puts its
// quantities back into stock. It defaults to true.
func WithRestoreOnClear(restore bool) Option {
	return func(e *Engine) { e.restoreOnClear = restore }
}

// WithPublishTimeout sets how long a single post-commit publish may take.
func WithPublishTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.publishTimeout = d
		}
	}
}

// New creates an engine over db publishing to sink. A nil sink discards
// events.
func New(db *sql.DB, sink events.Sink, opts ...Option) *Engine {
	if sink == nil {
		sink = events.Discard{}
	}
	e := &Engine{
		db:             db,
		sink:           sink,
		logger:         slog.Default(),
		restoreOnClear: true,
		publishTimeout: DefaultPublishTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// inTx runs fn in one immediate transaction.
func (e *Engine) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	return classify(op, store.WithTx(ctx, e.db, fn))
}

// done classifies err and records the outcome of op.
func (e *Engine) done(op string, err error) error {
	err = classify(op, err)
	if err == nil {
		e.metrics.Operation(op, "")
		return nil
	}

	kind := kindName(err)
	e.metrics.Operation(op, kind)
	if Kind(err) == ErrStoreUnavailable {
		e.logger.Error("inventory operation failed", "op", op, "error", err)
	} else {
		e.logger.Debug("inventory operation rejected", "op", op, "kind", kind, "error", err)
	}
	return err
}

func (e *Engine) requireActor(ctx context.Context, q store.Querier, op string, actorID int64) error {
	ok, err := store.ActiveUserExists(ctx, q, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return unauthorized(op)
	}
	return nil
}

// publish hands events to the sink. The caller's cancellation does not reach
// the sink since the change is already committed.
func (e *Engine) publish(ctx context.Context, evs []events.Event) {
	if len(evs) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.publishTimeout)
	defer cancel()

	for _, ev := range evs {
		err := e.sink.Publish(ctx, ev)
		e.metrics.Published(ev.Name, err)
		if ev.Name == events.LowStock {
			e.metrics.LowStock()
		}
		if err != nil {
			e.logger.Warn("publishing event failed", "event", ev.Name, "key", ev.Key, "error", err)
		}
	}
}

func itemKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func itemEvents(item *model.Item) []events.Event {
	key := itemKey(item.ID)
	evs := []events.Event{events.New(events.ItemChanged, key, item)}
	if item.IsLowStock() {
		evs = append(evs, events.New(events.LowStock, key, LowStockAlert{
			ItemID:    item.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Threshold: item.LowStockThreshold,
		}))
	}
	return evs
}

// LowStockAlert is the payload of an item.low_stock event.
type LowStockAlert struct {
	ItemID    int64  `json:"item_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Threshold int    `json:"threshold"`
}

// Lift actions carried by inventory.changed events.
const (
	ActionLiftCreated  = "lift_created"
	ActionLiftReturned = "lift_returned"
	ActionLiftCleared  = "lift_cleared"
)

// InventoryChange is the payload of an inventory.changed event.
type InventoryChange struct {
	Action string      `json:"action"`
	Lift   *model.Lift `json:"lift"`
}

func liftEvent(action string, lift *model.Lift) events.Event {
	return events.New(events.InventoryChanged, strconv.FormatInt(lift.ID, 10), InventoryChange{
		Action: action,
		Lift:   lift,
	})
}
