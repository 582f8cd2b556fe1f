package testutil

import (
	"context"
	"sync"

	"github.com/studentaid/disbursement/internal/domain/sequence"
	ierr "github.com/studentaid/disbursement/internal/errors"
)

// InMemorySequenceStore implements sequence.Repository
type InMemorySequenceStore struct {
	mu     sync.Mutex
	values map[string]int64
	// failures makes the next NextValue calls fail, see FailNext
	failures int
}

var _ sequence.Repository = (*InMemorySequenceStore)(nil)

func NewInMemorySequenceStore() *InMemorySequenceStore {
	return &InMemorySequenceStore{values: make(map[string]int64)}
}

func (s *InMemorySequenceStore) NextValue(ctx context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failures > 0 {
		s.failures--
		return 0, ierr.NewErrorf("could not lock sequence %s", name).Mark(ierr.ErrSequenceAllocation)
	}
	s.values[name]++
	return s.values[name], nil
}

func (s *InMemorySequenceStore) Current(ctx context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[name], nil
}

// Set moves a counter, the next value handed out is value+1
func (s *InMemorySequenceStore) Set(name string, value int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
}

// FailNext makes the next n allocations fail
func (s *InMemorySequenceStore) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = n
}

func (s *InMemorySequenceStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]int64)
	s.failures = 0
}
