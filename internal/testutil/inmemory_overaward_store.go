package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/studentaid/disbursement/internal/domain/overaward"
)

// InMemoryOverawardStore implements overaward.Repository as an append-only slice
type InMemoryOverawardStore struct {
	mu      sync.RWMutex
	entries []*overaward.LedgerEntry
	// createErr fails the next Create, see FailNextCreate
	createErr error
}

var _ overaward.Repository = (*InMemoryOverawardStore)(nil)

func NewInMemoryOverawardStore() *InMemoryOverawardStore {
	return &InMemoryOverawardStore{}
}

func (s *InMemoryOverawardStore) Create(ctx context.Context, e *overaward.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.createErr; err != nil {
		s.createErr = nil
		return err
	}
	c := *e
	s.entries = append(s.entries, &c)
	return nil
}

func (s *InMemoryOverawardStore) List(ctx context.Context, filter *overaward.Filter) ([]*overaward.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := lo.Filter(s.entries, func(e *overaward.LedgerEntry, _ int) bool {
		return matchesLedgerFilter(e, filter)
	})
	return lo.Map(matched, func(e *overaward.LedgerEntry, _ int) *overaward.LedgerEntry {
		c := *e
		return &c
	}), nil
}

func (s *InMemoryOverawardStore) SumByAwardCode(ctx context.Context, studentID string, asOf *time.Time) (map[string]decimal.Decimal, error) {
	entries, err := s.List(ctx, &overaward.Filter{StudentID: studentID, CreatedBefore: asOf})
	if err != nil {
		return nil, err
	}
	result := make(map[string]decimal.Decimal)
	for _, e := range entries {
		result[e.AwardValueCode] = result[e.AwardValueCode].Add(e.Amount)
	}
	return result, nil
}

func matchesLedgerFilter(e *overaward.LedgerEntry, f *overaward.Filter) bool {
	if f == nil {
		return true
	}
	if f.StudentID != "" && e.StudentID != f.StudentID {
		return false
	}
	if f.AwardValueCode != "" && e.AwardValueCode != f.AwardValueCode {
		return false
	}
	if f.DisbursementID != "" && lo.FromPtr(e.DisbursementID) != f.DisbursementID {
		return false
	}
	if f.OriginType != "" && e.OriginType != f.OriginType {
		return false
	}
	if f.CreatedBefore != nil && e.CreatedAt.After(*f.CreatedBefore) {
		return false
	}
	return true
}

func (s *InMemoryOverawardStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.createErr = nil
}

// FailNextCreate makes the next Create return err
func (s *InMemoryOverawardStore) FailNextCreate(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createErr = err
}

func (s *InMemoryOverawardStore) Snapshot() func() {
	s.mu.RLock()
	saved := append([]*overaward.LedgerEntry(nil), s.entries...)
	s.mu.RUnlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.entries = saved
	}
}
