package record

import "context"

// Service is the remote crop record service consumed by the sync engine
// and by presentation code.
//
// Create, Update and Delete map 1:1 to the queued operation kinds. GetAll
// and GetByID exist for presentation (list/get commands); the sync engine
// never calls them, but they share the same error taxonomy.
//
// All calls are subject to the caller's context; implementations must
// return promptly on cancellation.
type Service interface {
	Create(ctx context.Context, fields Fields) (Record, error)
	Update(ctx context.Context, id string, partial Partial) (Record, error)
	Delete(ctx context.Context, id string) error

	GetAll(ctx context.Context) ([]Record, error)
	GetByID(ctx context.Context, id string) (Record, error)
}
