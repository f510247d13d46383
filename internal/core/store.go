package core

import (
	"errors"
	"fmt"
	"sync"
)

// JobStore owns job records. Implementations must be safe for concurrent use
// and must hand out copies, never references to their internal state.
type JobStore interface {
	Create(rec JobRecord) (string, error)
	Get(id string) (JobRecord, error)
	Update(id string, mutate func(*JobRecord)) (JobRecord, error)
	List() []JobRecord
	Delete(id string) error
}

// MemoryStore is a process-local JobStore. Records are lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	jobs  map[string]JobRecord
	order []string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]JobRecord)}
}

// Create inserts a new record and returns its id.
func (s *MemoryStore) Create(rec JobRecord) (string, error) {
	if rec.ID == "" {
		return "", errors.New("create job: empty id")
	}
	if !rec.Status.Valid() {
		return "", fmt.Errorf("create job %s: unknown status %q", rec.ID, rec.Status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[rec.ID]; exists {
		return "", fmt.Errorf("create job %s: duplicate id", rec.ID)
	}
	s.jobs[rec.ID] = rec.clone()
	s.order = append(s.order, rec.ID)
	return rec.ID, nil
}

// Get returns a copy of the record.
func (s *MemoryStore) Get(id string) (JobRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.jobs[id]
	if !ok {
		return JobRecord{}, ErrNotFound
	}
	return rec.clone(), nil
}

// Update applies mutate to a private copy of the record and swaps it in
// atomically. Terminal records are left untouched and returned as-is.
// A mutation that moves the status backwards is rejected with
// ErrInvalidTransition and nothing is stored.
func (s *MemoryStore) Update(id string, mutate func(*JobRecord)) (JobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.jobs[id]
	if !ok {
		return JobRecord{}, ErrNotFound
	}
	if current.Status.Terminal() {
		return current.clone(), nil
	}

	next := current.clone()
	mutate(&next)

	if next.ID != current.ID {
		return JobRecord{}, fmt.Errorf("%w: job id is immutable", ErrInvalidTransition)
	}
	if next.Status.rank() < current.Status.rank() {
		return JobRecord{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, next.Status)
	}

	s.jobs[id] = next
	return next.clone(), nil
}

// List returns a point-in-time snapshot in creation order.
func (s *MemoryStore) List() []JobRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]JobRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.jobs[id].clone())
	}
	return out
}

// Delete removes the record.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return ErrNotFound
	}
	delete(s.jobs, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
