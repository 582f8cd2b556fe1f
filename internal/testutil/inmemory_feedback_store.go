package testutil

import (
	"context"

	"github.com/samber/lo"
	"github.com/studentaid/disbursement/internal/domain/feedback"
	ierr "github.com/studentaid/disbursement/internal/errors"
)

// InMemoryFeedbackStore implements feedback.Repository, keyed like the
// unique (disbursement_id, error_code) index
type InMemoryFeedbackStore struct {
	*InMemoryStore[*feedback.Entry]
}

var _ feedback.Repository = (*InMemoryFeedbackStore)(nil)

func NewInMemoryFeedbackStore() *InMemoryFeedbackStore {
	return &InMemoryFeedbackStore{InMemoryStore: NewInMemoryStore[*feedback.Entry]()}
}

func feedbackKey(disbursementID, errorCode string) string {
	return disbursementID + "|" + errorCode
}

func (s *InMemoryFeedbackStore) Create(ctx context.Context, e *feedback.Entry) (bool, error) {
	c := *e
	err := s.InMemoryStore.Create(ctx, feedbackKey(e.DisbursementID, e.ErrorCode), &c)
	if ierr.IsAlreadyExists(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *InMemoryFeedbackStore) ListByDisbursement(ctx context.Context, disbursementID string) ([]*feedback.Entry, error) {
	items, err := s.InMemoryStore.List(ctx, disbursementID, func(_ context.Context, e *feedback.Entry, _ interface{}) bool {
		return e.DisbursementID == disbursementID
	}, func(a, b *feedback.Entry) bool { return a.ErrorCode < b.ErrorCode })
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(e *feedback.Entry, _ int) *feedback.Entry {
		c := *e
		return &c
	}), nil
}

// All returns every stored entry ordered by disbursement then error code
func (s *InMemoryFeedbackStore) All(ctx context.Context) []*feedback.Entry {
	items, _ := s.InMemoryStore.List(ctx, nil, nil, func(a, b *feedback.Entry) bool {
		return feedbackKey(a.DisbursementID, a.ErrorCode) < feedbackKey(b.DisbursementID, b.ErrorCode)
	})
	return items
}

// Snapshot entries are copied on the way in and never mutated
func (s *InMemoryFeedbackStore) Snapshot() func() {
	return s.InMemoryStore.SnapshotWith(nil)
}
