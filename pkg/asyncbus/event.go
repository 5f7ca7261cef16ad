package asyncbus

import (
	"time"

	"github.com/google/uuid"
)

// Record is a ready-made event payload carrying identity and timing
// metadata. The bus itself is agnostic to the payload type; Record exists
// for observers that want a stable shape, such as the journal.
type Record struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// RecordOption configures record creation.
type RecordOption func(*Record)

// WithRecordID sets a specific event ID (default: auto-generated UUID).
func WithRecordID(id string) RecordOption {
	return func(r *Record) {
		r.ID = id
	}
}

// WithTimestamp sets a specific timestamp (default: time.Now()).
func WithTimestamp(t time.Time) RecordOption {
	return func(r *Record) {
		r.Timestamp = t
	}
}

// NewRecord creates a record with the given type, source, and payload.
func NewRecord(eventType, source string, data any, opts ...RecordOption) Record {
	r := Record{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now(),
		Data:      data,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}
