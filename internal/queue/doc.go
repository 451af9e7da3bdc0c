// Package queue defines the durable pending-operation queue.
//
// An Operation records one write (create, update, or delete) that has not
// yet been delivered to the remote record service. Operations are immutable
// once enqueued except for their attempt counter, which only the sync
// engine touches.
//
// The Store persists the whole queue as a single named slot in SQLite:
// one row holding the ordered operation list as a JSON array. Saves
// overwrite the slot atomically; loads that find nothing, or find content
// that no longer parses, yield an empty queue rather than an error, so a
// corrupt slot can never keep the application from starting.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON
package queue
