package status

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/croplog/croplog/internal/syncengine"
)

// fakeSource serves a settable snapshot.
type fakeSource struct {
	mu   sync.Mutex
	snap syncengine.Snapshot
}

func (s *fakeSource) Status() syncengine.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *fakeSource) set(snap syncengine.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

func TestReporter_ReadReflectsSource(t *testing.T) {
	src := &fakeSource{}
	r := NewReporter(src)

	assert.Equal(t, syncengine.Snapshot{}, r.Read())

	src.set(syncengine.Snapshot{Online: true, PendingCount: 3, SyncInProgress: true})
	got := r.Read()
	assert.True(t, got.Online)
	assert.Equal(t, 3, got.PendingCount)
	assert.True(t, got.SyncInProgress)
}

func TestReporter_WatchDeliversFirstSnapshotImmediately(t *testing.T) {
	src := &fakeSource{}
	src.set(syncengine.Snapshot{PendingCount: 1})
	r := NewReporter(src)

	ctx, cancel := context.WithCancel(context.Background())

	got := make(chan syncengine.Snapshot, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Watch(ctx, time.Hour, func(snap syncengine.Snapshot) {
			select {
			case got <- snap:
			default:
			}
		})
	}()

	select {
	case snap := <-got:
		assert.Equal(t, 1, snap.PendingCount)
	case <-time.After(2 * time.Second):
		t.Fatal("no immediate snapshot delivered")
	}

	cancel()
	<-done
}

func TestReporter_WatchPollsUntilCancelled(t *testing.T) {
	src := &fakeSource{}
	r := NewReporter(src)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	count := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Watch(ctx, 5*time.Millisecond, func(syncengine.Snapshot) {
			mu.Lock()
			count++
			mu.Unlock()
		})
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count >= 3
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
