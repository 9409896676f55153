// Package events carries inventory change notifications to observers.
// Publishing is best-effort: the engine publishes after its transaction has
// committed and never rolls back because a sink failed.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Event names.
const (
	ItemChanged      = "item.changed"
	LowStock         = "item.low_stock"
	InventoryChanged = "inventory.changed"
)

// Event is a single notification. Key identifies the entity the event is
// about and is used for partitioning by sinks that support it.
type Event struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Key        string    `json:"key,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// New builds an event with a fresh ID and timestamp.
func New(name, key string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Name:       name,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Sink receives events.
type Sink interface {
	Publish(ctx context.Context, ev Event) error
}

// Multi fans an event out to several sinks. Every sink is tried; the errors
// of the failing ones are joined.
type Multi []Sink

// Publish implements Sink.
func (m Multi) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every event.
type Discard struct{}

// Publish implements Sink.
func (Discard) Publish(context.Context, Event) error { return nil }
