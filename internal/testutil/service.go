// Package testutil provides deterministic test doubles shared across
// packages.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/croplog/croplog/internal/record"
)

// Call is one recorded invocation of the fake service.
type Call struct {
	Method  string // "create", "update", "delete", "getAll", "getById"
	ID      string // target record id for update/delete/getById
	Fields  record.Fields
	Partial record.Partial
}

// FakeService is an in-memory record.Service that records every call and
// can be scripted to fail.
//
// Failures are controlled two ways:
//   - FailAll: every write fails until cleared
//   - FailNext(n): the next n writes fail, then the service recovers
//
// Thread-safety: all methods are safe for concurrent use.
type FakeService struct {
	mu       sync.Mutex
	calls    []Call
	records  map[string]record.Record
	order    []string
	nextID   int
	failAll  bool
	failNext int
}

// NewFakeService creates an empty fake service.
func NewFakeService() *FakeService {
	return &FakeService{records: make(map[string]record.Record)}
}

// FailAll makes every write fail until SucceedAll is called.
func (s *FakeService) FailAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAll = true
}

// SucceedAll clears FailAll.
func (s *FakeService) SucceedAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAll = false
	s.failNext = 0
}

// FailNext makes the next n writes fail.
func (s *FakeService) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = n
}

// Calls returns a copy of all recorded calls in order.
func (s *FakeService) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	calls := make([]Call, len(s.calls))
	copy(calls, s.calls)
	return calls
}

// CallCount returns the number of recorded calls.
func (s *FakeService) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// Create implements record.Service.
func (s *FakeService) Create(ctx context.Context, fields record.Fields) (record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Method: "create", Fields: fields})
	if err := s.maybeFailLocked(); err != nil {
		return record.Record{}, err
	}

	s.nextID++
	rec := record.Record{
		ID:       fmt.Sprintf("rec-%d", s.nextID),
		CropName: fields.CropName,
		Quantity: fields.Quantity,
		Unit:     fields.Unit,
		Notes:    fields.Notes,
	}
	s.records[rec.ID] = rec
	s.order = append(s.order, rec.ID)
	return rec, nil
}

// Update implements record.Service.
func (s *FakeService) Update(ctx context.Context, id string, partial record.Partial) (record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Method: "update", ID: id, Partial: partial})
	if err := s.maybeFailLocked(); err != nil {
		return record.Record{}, err
	}

	rec, ok := s.records[id]
	if !ok {
		return record.Record{}, record.ErrNotFound
	}
	if partial.CropName != nil {
		rec.CropName = *partial.CropName
	}
	if partial.Quantity != nil {
		rec.Quantity = *partial.Quantity
	}
	if partial.Unit != nil {
		rec.Unit = *partial.Unit
	}
	if partial.Notes != nil {
		rec.Notes = *partial.Notes
	}
	s.records[id] = rec
	return rec, nil
}

// Delete implements record.Service.
func (s *FakeService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Method: "delete", ID: id})
	if err := s.maybeFailLocked(); err != nil {
		return err
	}

	if _, ok := s.records[id]; !ok {
		return record.ErrNotFound
	}
	delete(s.records, id)
	for i, rid := range s.order {
		if rid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// GetAll implements record.Service.
func (s *FakeService) GetAll(ctx context.Context) ([]record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Method: "getAll"})

	recs := make([]record.Record, 0, len(s.order))
	for _, id := range s.order {
		recs = append(recs, s.records[id])
	}
	return recs, nil
}

// GetByID implements record.Service.
func (s *FakeService) GetByID(ctx context.Context, id string) (record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Method: "getById", ID: id})

	rec, ok := s.records[id]
	if !ok {
		return record.Record{}, record.ErrNotFound
	}
	return rec, nil
}

// maybeFailLocked applies the scripted failure state to a write.
func (s *FakeService) maybeFailLocked() error {
	if s.failAll {
		return &record.ServiceError{StatusCode: 503, Code: "UNAVAILABLE", Message: "scripted failure"}
	}
	if s.failNext > 0 {
		s.failNext--
		return &record.ServiceError{StatusCode: 503, Code: "UNAVAILABLE", Message: "scripted failure"}
	}
	return nil
}
