package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind distinguishes the three write operations the queue can hold.
type Kind string

const (
	KindCreate Kind = "create"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
)

// Valid reports whether k is one of the known operation kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindCreate, KindUpdate, KindDelete:
		return true
	}
	return false
}

// Operation is one queued write awaiting delivery to the record service.
//
// ID, Kind, Payload and EnqueuedAt are immutable after enqueue. Attempts
// starts at 0 and is incremented by the sync engine on each failed
// delivery attempt; it never decreases.
//
// The JSON field names are the persisted queue layout. There is no
// version field: decoding tolerates missing fields, and content that
// fails to parse entirely is treated as an empty queue by the Store.
type Operation struct {
	ID         string          `json:"id"`
	Kind       Kind            `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
	Attempts   int             `json:"attempts"`
}

func (op Operation) String() string {
	return fmt.Sprintf("%s %s (attempts=%d)", op.Kind, op.ID, op.Attempts)
}
