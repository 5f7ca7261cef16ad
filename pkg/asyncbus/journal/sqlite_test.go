package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestSQLiteStoreAppendAndList(t *testing.T) {
	store := newTestSQLiteStore(t)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, testEntry(i, "a")))
	}

	entries, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 5)

	// Newest first
	assert.Equal(t, "evt-4", entries[0].EventID)
	assert.Equal(t, "evt-0", entries[4].EventID)

	limited, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "evt-4", limited[0].EventID)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := newTestSQLiteStore(t)

	ctx := context.Background()
	want := &Entry{
		EventID:   "evt-rt",
		EventType: "order.created",
		Source:    "orders",
		Timestamp: time.Date(2026, 6, 15, 9, 30, 0, 123456789, time.UTC),
		Payload:   []byte(`{"order_id":"o-1"}`),
	}
	require.NoError(t, store.Append(ctx, want))

	entries, err := store.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.Equal(t, want.EventID, got.EventID)
	assert.Equal(t, want.EventType, got.EventType)
	assert.Equal(t, want.Source, got.Source)
	assert.True(t, want.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, want.Payload, got.Payload)
}

func TestSQLiteStoreCounts(t *testing.T) {
	store := newTestSQLiteStore(t)

	ctx := context.Background()
	require.NoError(t, store.Append(ctx, testEntry(0, "order.created")))
	require.NoError(t, store.Append(ctx, testEntry(1, "order.created")))
	require.NoError(t, store.Append(ctx, testEntry(2, "order.shipped")))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	byType, err := store.CountByType(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"order.created": 2, "order.shipped": 1}, byType)
}

func TestSQLiteStoreDuplicateEventID(t *testing.T) {
	store := newTestSQLiteStore(t)

	ctx := context.Background()
	require.NoError(t, store.Append(ctx, testEntry(0, "a")))

	// event_id is the primary key
	assert.Error(t, store.Append(ctx, testEntry(0, "a")))
}

func TestSQLiteStoreClosed(t *testing.T) {
	store := newTestSQLiteStore(t)
	require.NoError(t, store.Close())

	ctx := context.Background()
	assert.ErrorIs(t, store.Append(ctx, testEntry(0, "a")), ErrStoreClosed)

	_, err := store.List(ctx, 0)
	assert.ErrorIs(t, err, ErrStoreClosed)

	_, err = store.Count(ctx)
	assert.ErrorIs(t, err, ErrStoreClosed)

	// Close is idempotent
	assert.NoError(t, store.Close())
}
