package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erazemk/zaloga/internal/store"
)

// Error kinds. Every error returned by the Engine matches exactly one of them
// with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrConflict          = errors.New("conflict")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrNotFound, "not_found"},
	{ErrInvalidInput, "invalid_input"},
	{ErrInsufficientStock, "insufficient_stock"},
	{ErrUnauthorized, "unauthorized"},
	{ErrConflict, "conflict"},
	{ErrStoreUnavailable, "store_unavailable"},
}

// Error describes a failed engine operation. Zero-valued ID fields are not
// relevant to the failure.
type Error struct {
	Op        string
	Kind      error
	ItemID    int64
	LiftID    int64
	UnitID    int64
	Available int
	Requested int
	Msg       string
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())

	switch {
	case e.Kind == ErrInsufficientStock:
		fmt.Fprintf(&b, ": item %d has %d, requested %d", e.ItemID, e.Available, e.Requested)
	case e.ItemID > 0:
		fmt.Fprintf(&b, ": item %d", e.ItemID)
	case e.LiftID > 0:
		fmt.Fprintf(&b, ": lift %d", e.LiftID)
	case e.UnitID > 0:
		fmt.Fprintf(&b, ": unit %d", e.UnitID)
	}

	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Kind returns the error kind of err, or nil if err is not an engine error.
func Kind(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.err
		}
	}
	return nil
}

func kindName(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "unknown"
}

func invalid(op, format string, args ...any) *Error {
	return &Error{Op: op, Kind: ErrInvalidInput, Msg: fmt.Sprintf(format, args...)}
}

func unauthorized(op string) *Error {
	return &Error{Op: op, Kind: ErrUnauthorized, Msg: "unknown actor"}
}

// classify turns an error surfacing from a transaction into an engine error.
// Errors the engine built itself pass through unchanged.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	switch {
	case errors.Is(err, store.ErrQuantityChanged), store.IsUniqueViolation(err):
		return &Error{Op: op, Kind: ErrConflict, Err: err}
	case errors.Is(err, store.ErrQuantityOverflow):
		return &Error{Op: op, Kind: ErrInvalidInput, Msg: "quantity too large", Err: err}
	case store.IsForeignKeyViolation(err):
		return &Error{Op: op, Kind: ErrInvalidInput, Msg: "referenced record does not exist", Err: err}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &Error{Op: op, Kind: ErrStoreUnavailable, Msg: "operation aborted", Err: err}
	}
	return &Error{Op: op, Kind: ErrStoreUnavailable, Err: err}
}
