package syncengine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/croplog/croplog/internal/connectivity"
	"github.com/croplog/croplog/internal/queue"
	"github.com/croplog/croplog/internal/record"
)

const (
	// DefaultMaxAttempts is the delivery attempt cap. An operation that
	// has failed this many times is dropped from the queue.
	DefaultMaxAttempts = 3

	// DefaultAttemptTimeout bounds a single delivery attempt so a call
	// that never resolves cannot stall a drain pass forever.
	DefaultAttemptTimeout = 10 * time.Second
)

// Snapshot is the engine state projection consumed by presentation code.
type Snapshot struct {
	Online         bool `json:"online"`
	PendingCount   int  `json:"pendingCount"`
	SyncInProgress bool `json:"syncInProgress"`
}

// DropHandler observes operations discarded after exhausting the attempt
// cap. The original caller returned long before this decision was made, so
// this callback (plus the error log the engine always writes) is the only
// place the loss is visible.
type DropHandler func(op queue.Operation, cause error)

// QueueStore persists the operation queue. Implemented by *queue.Store.
type QueueStore interface {
	Load(ctx context.Context) ([]queue.Operation, error)
	Save(ctx context.Context, ops []queue.Operation) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxAttempts sets the delivery attempt cap.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) { e.maxAttempts = n }
}

// WithAttemptTimeout sets the per-attempt delivery timeout.
func WithAttemptTimeout(d time.Duration) Option {
	return func(e *Engine) { e.attemptTimeout = d }
}

// WithIDGenerator overrides the operation id generator (for testing).
func WithIDGenerator(gen IDGenerator) Option {
	return func(e *Engine) { e.gen = gen }
}

// WithClock overrides the wall clock used for EnqueuedAt (for testing).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithDropHandler registers a handler for dropped operations.
func WithDropHandler(fn DropHandler) Option {
	return func(e *Engine) { e.onDrop = fn }
}

// WithLogger sets the engine's logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// Engine owns the in-memory pending-operation queue and drains it against
// the record service when online.
//
// Thread-safety model:
//   - EnqueueCreate/EnqueueUpdate/EnqueueDelete: safe from any goroutine
//   - Drain: safe from any goroutine; overlapping calls coalesce to one pass
//   - Run: must be called from exactly one goroutine
//   - Status/Pending: safe from any goroutine
type Engine struct {
	store    QueueStore
	svc      record.Service
	provider connectivity.Provider
	gen      IDGenerator
	now      func() time.Time
	log      *slog.Logger

	maxAttempts    int
	attemptTimeout time.Duration
	onDrop         DropHandler

	// trigger coalesces drain requests (buffered, size 1): posting while a
	// pass runs schedules exactly one follow-up pass.
	trigger     chan struct{}
	unsubscribe func()

	mu       sync.Mutex
	ops      []queue.Operation
	online   bool
	draining bool
}

// New constructs an engine, loads the persisted queue, and subscribes to
// the connectivity provider. The engine is usable immediately; Run only
// needs to be started when background draining is wanted.
//
// A queue that cannot be loaded degrades to empty: prior state is already
// lost and startup must not be blocked on it.
func New(ctx context.Context, store QueueStore, svc record.Service, provider connectivity.Provider, opts ...Option) *Engine {
	e := &Engine{
		store:          store,
		svc:            svc,
		provider:       provider,
		gen:            UUIDv7Generator{},
		now:            time.Now,
		log:            slog.Default(),
		maxAttempts:    DefaultMaxAttempts,
		attemptTimeout: DefaultAttemptTimeout,
		trigger:        make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(e)
	}

	ops, err := store.Load(ctx)
	if err != nil {
		e.log.Warn("queue load failed, starting with empty queue", "error", err)
		ops = nil
	}
	e.ops = ops
	e.online = provider.Online()
	e.unsubscribe = provider.Subscribe(e.onConnectivity)
	return e
}

// Close unsubscribes from the connectivity provider. It does not touch the
// store; the owner of the store closes it.
func (e *Engine) Close() {
	if e.unsubscribe != nil {
		e.unsubscribe()
	}
}

// EnqueueCreate appends a create operation and returns its id.
// Field strings are NFC-normalized before the payload is fixed.
func (e *Engine) EnqueueCreate(ctx context.Context, fields record.Fields) (string, error) {
	payload, err := queue.EncodeCreate(fields.Normalized())
	if err != nil {
		return "", err
	}
	return e.enqueue(ctx, queue.KindCreate, payload), nil
}

// EnqueueUpdate appends an update operation and returns its id.
func (e *Engine) EnqueueUpdate(ctx context.Context, id string, partial record.Partial) (string, error) {
	payload, err := queue.EncodeUpdate(id, partial.Normalized())
	if err != nil {
		return "", err
	}
	return e.enqueue(ctx, queue.KindUpdate, payload), nil
}

// EnqueueDelete appends a delete operation and returns its id.
func (e *Engine) EnqueueDelete(ctx context.Context, id string) (string, error) {
	payload, err := queue.EncodeDelete(id)
	if err != nil {
		return "", err
	}
	return e.enqueue(ctx, queue.KindDelete, payload), nil
}

// enqueue appends the operation, writes the queue through to the store,
// and posts a drain trigger when online. A persist failure is logged and
// swallowed: the in-memory append stands and the caller is told the
// operation was accepted.
func (e *Engine) enqueue(ctx context.Context, kind queue.Kind, payload json.RawMessage) string {
	e.mu.Lock()
	op := queue.Operation{
		ID:         e.gen.NewID(),
		Kind:       kind,
		Payload:    payload,
		EnqueuedAt: e.now().UTC(),
	}
	e.ops = append(e.ops, op)
	e.persistLocked(ctx)
	online := e.online
	e.mu.Unlock()

	e.log.Info("operation enqueued", "id", op.ID, "kind", kind)
	if online {
		e.requestDrain()
	}
	return op.ID
}

// Drain performs one drain pass: every currently-queued operation is
// attempted once, in FIFO order, each independently of the others.
//
// No-op when offline, already draining, or the queue is empty. The
// operation list is fixed at pass start; operations enqueued mid-pass are
// left for the next pass (their enqueue already posted a trigger).
func (e *Engine) Drain(ctx context.Context) {
	e.mu.Lock()
	if !e.online || e.draining || len(e.ops) == 0 {
		e.mu.Unlock()
		return
	}
	e.draining = true
	pass := make([]queue.Operation, len(e.ops))
	copy(pass, e.ops)
	e.mu.Unlock()

	e.log.Debug("drain pass started", "pending", len(pass))

	type outcome struct {
		remove bool
		failed bool
	}
	results := make(map[string]outcome, len(pass))

	for _, op := range pass {
		err := e.deliver(ctx, op)
		if err == nil {
			results[op.ID] = outcome{remove: true}
			e.log.Info("operation delivered", "id", op.ID, "kind", op.Kind, "attempts", op.Attempts)
			continue
		}

		attempts := op.Attempts + 1
		if attempts >= e.maxAttempts {
			results[op.ID] = outcome{remove: true, failed: true}
			op.Attempts = attempts
			e.log.Error("operation dropped after retry cap",
				"id", op.ID, "kind", op.Kind, "attempts", attempts, "error", err)
			if e.onDrop != nil {
				e.onDrop(op, err)
			}
		} else {
			results[op.ID] = outcome{failed: true}
			e.log.Warn("delivery failed, will retry",
				"id", op.ID, "kind", op.Kind, "attempts", attempts, "error", err)
		}
	}

	e.mu.Lock()
	kept := e.ops[:0]
	for _, op := range e.ops {
		r, attempted := results[op.ID]
		if !attempted {
			// Enqueued mid-pass; belongs to the next pass.
			kept = append(kept, op)
			continue
		}
		if r.remove {
			continue
		}
		if r.failed {
			op.Attempts++
		}
		kept = append(kept, op)
	}
	e.ops = kept
	e.persistLocked(ctx)
	e.draining = false
	remaining := len(e.ops)
	e.mu.Unlock()

	e.log.Debug("drain pass finished", "remaining", remaining)
}

// Run consumes drain triggers until ctx is done. Triggers are posted by
// enqueues made while online and by the provider's became-online event.
func (e *Engine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.trigger:
			e.Drain(ctx)
		}
	}
}

// Status returns the current state projection. Pure read, no side effects.
func (e *Engine) Status() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Online:         e.online,
		PendingCount:   len(e.ops),
		SyncInProgress: e.draining,
	}
}

// Pending returns a copy of the queued operations, in FIFO order.
func (e *Engine) Pending() []queue.Operation {
	e.mu.Lock()
	defer e.mu.Unlock()
	ops := make([]queue.Operation, len(e.ops))
	copy(ops, e.ops)
	return ops
}

// deliver attempts one operation against the record service, bounded by
// the per-attempt timeout. An undecodable payload counts as a delivery
// failure and is retried until the cap drops it.
func (e *Engine) deliver(ctx context.Context, op queue.Operation) error {
	ctx, cancel := context.WithTimeout(ctx, e.attemptTimeout)
	defer cancel()

	switch op.Kind {
	case queue.KindCreate:
		fields, err := queue.DecodeCreate(op.Payload)
		if err != nil {
			return err
		}
		_, err = e.svc.Create(ctx, fields)
		return err
	case queue.KindUpdate:
		id, partial, err := queue.DecodeUpdate(op.Payload)
		if err != nil {
			return err
		}
		_, err = e.svc.Update(ctx, id, partial)
		return err
	case queue.KindDelete:
		id, err := queue.DecodeDelete(op.Payload)
		if err != nil {
			return err
		}
		return e.svc.Delete(ctx, id)
	default:
		return fmt.Errorf("unknown operation kind %q", op.Kind)
	}
}

// onConnectivity tracks provider transitions; a restored connection
// schedules a drain pass.
func (e *Engine) onConnectivity(online bool) {
	e.mu.Lock()
	e.online = online
	e.mu.Unlock()

	if online {
		e.requestDrain()
	}
}

// persistLocked writes the queue through to the store. Callers hold e.mu,
// so the save completes before the mutating call returns. Failure is
// logged and swallowed; the in-memory queue stays authoritative.
func (e *Engine) persistLocked(ctx context.Context) {
	if err := e.store.Save(ctx, e.ops); err != nil {
		e.log.Warn("queue persist failed, in-memory queue remains authoritative", "error", err)
	}
}

// requestDrain posts a drain trigger without blocking; the buffer of 1
// coalesces concurrent requests.
func (e *Engine) requestDrain() {
	select {
	case e.trigger <- struct{}{}:
	default:
	}
}
