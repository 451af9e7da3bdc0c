// Package status projects sync engine state for presentation code.
package status

import (
	"context"
	"time"

	"github.com/croplog/croplog/internal/syncengine"
)

// Source is anything that can report engine state. Implemented by
// *syncengine.Engine.
type Source interface {
	Status() syncengine.Snapshot
}

// Reporter is a read-only projection of sync engine state. It holds no
// state of its own; every Read reflects the engine at call time.
type Reporter struct {
	src Source
}

// NewReporter creates a reporter over the given source.
func NewReporter(src Source) *Reporter {
	return &Reporter{src: src}
}

// Read returns the current snapshot. Cheap and synchronous; intended to be
// polled at whatever interval suits the caller.
func (r *Reporter) Read() syncengine.Snapshot {
	return r.src.Status()
}

// Watch polls the source every interval and invokes fn with each snapshot
// until ctx is done. The first snapshot is delivered immediately.
func (r *Reporter) Watch(ctx context.Context, interval time.Duration, fn func(syncengine.Snapshot)) {
	fn(r.Read())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(r.Read())
		}
	}
}
