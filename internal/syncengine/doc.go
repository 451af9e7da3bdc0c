// Package syncengine owns the pending-operation queue and reconciles it
// with the remote record service.
//
// ARCHITECTURE:
//
// The engine is Idle or Draining, per queue, never per operation. A drain
// pass fixes the operation list at pass start and attempts every operation
// in FIFO order against the record service. A successful delivery removes
// the operation; a failed one increments its attempt counter. Once the
// counter reaches the configured cap the operation is removed anyway and a
// dropped-operation event is emitted - at-least-once delivery, bounded by
// the cap.
//
// Failure handling is strictly local: a delivery failure never aborts the
// pass, and a storage failure never rolls back the in-memory queue. For
// the running process the in-memory queue is authoritative; persistence is
// write-through and best-effort.
//
// Scheduling is explicit. Enqueueing while online, and the connectivity
// provider's became-online event, both post to a coalescing trigger
// channel. Run consumes triggers and executes passes one at a time; a
// trigger arriving mid-pass simply schedules the next pass, so operations
// enqueued while draining are attempted without being starved. Drain may
// also be called directly (one-shot CLI commands do this) and is a no-op
// when offline, already draining, or the queue is empty.
package syncengine
