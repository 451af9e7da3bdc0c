package record

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by GetByID (and Update/Delete against a missing
// id) when the service has no record with the requested id.
var ErrNotFound = errors.New("record not found")

// ServiceError is a failed call to the record service. It covers network,
// server, and application-level rejections uniformly; the sync engine only
// cares that delivery failed, not why.
type ServiceError struct {
	StatusCode int    // HTTP status, 0 when the request never reached the service
	Code       string // machine-readable error code from the service, if any
	Message    string // human-readable description
	Err        error  // underlying transport error, if any
}

func (e *ServiceError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("record service: %s: %v", e.Message, e.Err)
	case e.Code != "":
		return fmt.Sprintf("record service: %s (%s, status %d)", e.Message, e.Code, e.StatusCode)
	default:
		return fmt.Sprintf("record service: %s (status %d)", e.Message, e.StatusCode)
	}
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
