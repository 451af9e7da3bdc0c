package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, opts ...StoreOption) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "queue.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleOps(t *testing.T) []Operation {
	t.Helper()
	createPayload, err := json.Marshal(map[string]any{
		"cropName": "Corn", "quantity": 12, "unit": "kg",
	})
	require.NoError(t, err)
	deletePayload, err := json.Marshal(map[string]string{"id": "rec-7"})
	require.NoError(t, err)

	return []Operation{
		{
			ID:         "op-1",
			Kind:       KindCreate,
			Payload:    createPayload,
			EnqueuedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
			Attempts:   0,
		},
		{
			ID:         "op-2",
			Kind:       KindDelete,
			Payload:    deletePayload,
			EnqueuedAt: time.Date(2024, 5, 1, 10, 5, 0, 0, time.UTC),
			Attempts:   2,
		},
	}
}

func TestStore_LoadEmptyWhenNoPriorState(t *testing.T) {
	s := openTestStore(t)

	ops, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	want := sampleOps(t)

	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Kind, got[i].Kind)
		assert.JSONEq(t, string(want[i].Payload), string(got[i].Payload))
		assert.Equal(t, want[i].Attempts, got[i].Attempts)
		assert.True(t, want[i].EnqueuedAt.Equal(got[i].EnqueuedAt))
	}
}

func TestStore_SaveOverwritesAtomically(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleOps(t)))
	require.NoError(t, s.Save(ctx, sampleOps(t)[:1]))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "op-1", got[0].ID)
}

func TestStore_SaveEmptyQueue(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleOps(t)))
	require.NoError(t, s.Save(ctx, nil))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_UnparseableSlotTreatedAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), sampleOps(t)))
	require.NoError(t, s.Close())

	// Corrupt the slot behind the store's back.
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE queue_slots SET ops = '{{{not json' WHERE name = ?`, DefaultSlot)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	ops, err := s.Load(context.Background())
	require.NoError(t, err, "corrupt slot must not be fatal")
	assert.Empty(t, ops)
}

func TestStore_ToleratesMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	// A slot written by an older layout: no attempts, no enqueuedAt.
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(
		`INSERT INTO queue_slots (name, ops, updated_at) VALUES (?, ?, ?)`,
		DefaultSlot,
		`[{"id":"op-old","kind":"create","payload":{"cropName":"Rye"}}]`,
		"2024-05-01T10:00:00Z",
	)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	ops, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "op-old", ops[0].ID)
	assert.Equal(t, KindCreate, ops[0].Kind)
	assert.Equal(t, 0, ops[0].Attempts)
	assert.True(t, ops[0].EnqueuedAt.IsZero())
}

func TestStore_SlotsAreIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.db")
	ctx := context.Background()

	a, err := Open(path)
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.Save(ctx, sampleOps(t)))

	b, err := Open(path, WithSlot("other"))
	require.NoError(t, err)
	defer b.Close()

	ops, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, ops)
}
