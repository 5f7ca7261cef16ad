// Package journal persists events dispatched by the bus.
//
// A journal is an observer-side audit trail: register the observer returned
// by NewObserver on a Fanout and every dispatched record is appended to the
// backing Store. Two stores are provided: MemoryStore for tests and
// single-process use, and SQLiteStore for durable journals.
//
// The journal sees only events that were actually dispatched. Events dropped
// by the bus on overflow never reach it; the bus keeps no secondary buffer.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/randalmurphal/asyncbus/pkg/asyncbus"
)

// ErrStoreClosed is returned when operating on a closed store.
var ErrStoreClosed = errors.New("journal store closed")

// Entry is one journaled event.
type Entry struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Payload   []byte    `json:"payload,omitempty"` // JSON-encoded event data
}

// Store is an append-only log of dispatched events.
type Store interface {
	// Append adds an entry to the journal.
	Append(ctx context.Context, e *Entry) error

	// List returns entries ordered newest first, up to limit.
	// A non-positive limit returns all entries.
	List(ctx context.Context, limit int) ([]*Entry, error)

	// Count returns the number of journaled entries.
	Count(ctx context.Context) (int, error)

	// CountByType returns entry counts grouped by event type.
	CountByType(ctx context.Context) (map[string]int, error)

	// Close releases store resources.
	Close() error
}

// NewObserver adapts a Store into a bus observer that journals every
// dispatched record. Append errors propagate to the fan-out's error hook.
func NewObserver(store Store) asyncbus.Observer[asyncbus.Record] {
	return asyncbus.ObserverFunc[asyncbus.Record](func(ctx context.Context, rec asyncbus.Record) error {
		payload, err := json.Marshal(rec.Data)
		if err != nil {
			return fmt.Errorf("marshal event payload: %w", err)
		}
		return store.Append(ctx, &Entry{
			EventID:   rec.ID,
			EventType: rec.Type,
			Source:    rec.Source,
			Timestamp: rec.Timestamp,
			Payload:   payload,
		})
	})
}
