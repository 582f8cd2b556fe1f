package testutil

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/studentaid/disbursement/internal/domain/disbursement"
	ierr "github.com/studentaid/disbursement/internal/errors"
	"github.com/studentaid/disbursement/internal/types"
)

// InMemoryDisbursementStore implements disbursement.Repository
type InMemoryDisbursementStore struct {
	*InMemoryStore[*disbursement.Disbursement]
	// failures holds errors returned by the next calls of a method, see FailNext
	failures map[string][]error
}

var _ disbursement.Repository = (*InMemoryDisbursementStore)(nil)

func NewInMemoryDisbursementStore() *InMemoryDisbursementStore {
	return &InMemoryDisbursementStore{
		InMemoryStore: NewInMemoryStore[*disbursement.Disbursement](),
		failures:      make(map[string][]error),
	}
}

// FailNext makes the next calls of method return errs, one per call
func (s *InMemoryDisbursementStore) FailNext(method string, errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = append(s.failures[method], errs...)
}

func (s *InMemoryDisbursementStore) injected(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	errs := s.failures[method]
	if len(errs) == 0 {
		return nil
	}
	s.failures[method] = errs[1:]
	return errs[0]
}

func (s *InMemoryDisbursementStore) Snapshot() func() {
	return s.InMemoryStore.SnapshotWith(copyDisbursement)
}

// Helper to copy disbursement with its values
func copyDisbursement(d *disbursement.Disbursement) *disbursement.Disbursement {
	if d == nil {
		return nil
	}
	c := *d
	c.Values = lo.Map(d.Values, func(v *disbursement.Value, _ int) *disbursement.Value { return v.Copy() })
	return &c
}

func (s *InMemoryDisbursementStore) Create(ctx context.Context, d *disbursement.Disbursement) error {
	for _, v := range d.Values {
		if v.DisbursementID == "" {
			v.DisbursementID = d.ID
		}
	}
	return s.InMemoryStore.Create(ctx, d.ID, copyDisbursement(d))
}

func (s *InMemoryDisbursementStore) Get(ctx context.Context, id string) (*disbursement.Disbursement, error) {
	d, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return copyDisbursement(d), nil
}

func (s *InMemoryDisbursementStore) ListCandidates(ctx context.Context, filter *disbursement.CandidateFilter) ([]*disbursement.Disbursement, error) {
	items, err := s.InMemoryStore.List(ctx, filter, candidateFilterFn, func(a, b *disbursement.Disbursement) bool {
		if !a.ScheduledDate.Equal(b.ScheduledDate) {
			return a.ScheduledDate.Before(b.ScheduledDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(d *disbursement.Disbursement, _ int) *disbursement.Disbursement { return copyDisbursement(d) }), nil
}

func candidateFilterFn(ctx context.Context, d *disbursement.Disbursement, filter interface{}) bool {
	f, ok := filter.(*disbursement.CandidateFilter)
	if !ok {
		return true
	}
	if d.Status != types.DisbursementStatusPending && d.Status != types.DisbursementStatusReadyToSend {
		return false
	}
	if d.DocumentNumber != nil || d.OfferingIntensity != f.OfferingIntensity {
		return false
	}
	return !d.ScheduledDate.After(f.ScheduledBefore)
}

func (s *InMemoryDisbursementStore) GetSentByDocumentNumber(ctx context.Context, intensity types.OfferingIntensity, documentNumber int64) (*disbursement.Disbursement, error) {
	items, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, d *disbursement.Disbursement, _ interface{}) bool {
		return d.IsSent() && d.OfferingIntensity == intensity &&
			d.DocumentNumber != nil && *d.DocumentNumber == documentNumber
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ierr.NewErrorf("no sent disbursement with document number %d", documentNumber).
			Mark(ierr.ErrNotFound)
	}
	return copyDisbursement(items[0]), nil
}

func (s *InMemoryDisbursementStore) PreviouslyDisbursed(ctx context.Context, applicationID, assessmentID string) (map[string]decimal.Decimal, error) {
	items, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, d *disbursement.Disbursement, _ interface{}) bool {
		return d.IsSent() && d.ApplicationID == applicationID
	}, nil)
	if err != nil {
		return nil, err
	}

	result := make(map[string]decimal.Decimal)
	for _, d := range items {
		for _, v := range d.Values {
			if d.AssessmentID != assessmentID {
				result[v.ValueCode] = result[v.ValueCode].Add(v.EffectiveAmount)
			} else {
				result[v.ValueCode] = result[v.ValueCode].Sub(v.DisbursedAmountSubtracted)
			}
		}
	}
	return result, nil
}

func (s *InMemoryDisbursementStore) LifetimeDisbursed(ctx context.Context, studentID string, intensity types.OfferingIntensity) (map[string]decimal.Decimal, error) {
	items, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, d *disbursement.Disbursement, _ interface{}) bool {
		return d.IsSent() && d.StudentID == studentID && d.OfferingIntensity == intensity
	}, nil)
	if err != nil {
		return nil, err
	}

	result := make(map[string]decimal.Decimal)
	for _, d := range items {
		for _, v := range d.Values {
			result[v.ValueCode] = result[v.ValueCode].Add(v.EffectiveAmount)
		}
	}
	return result, nil
}

func (s *InMemoryDisbursementStore) UpdateStatus(ctx context.Context, id string, from, to types.DisbursementStatus) error {
	if !from.CanTransitionTo(to) {
		return ierr.NewErrorf("cannot move disbursement from %s to %s", from, to).Mark(ierr.ErrInvalidOperation)
	}
	return s.InMemoryStore.Mutate(ctx, id, func(d *disbursement.Disbursement) error {
		if d.Status != from {
			return ierr.NewErrorf("disbursement %s is not in status %s", id, from).Mark(ierr.ErrInvalidOperation)
		}
		d.Status = to
		d.UpdatedAt = time.Now().UTC()
		d.UpdatedBy = types.GetUserID(ctx)
		return nil
	})
}

func (s *InMemoryDisbursementStore) MarkSent(ctx context.Context, sent *disbursement.Disbursement) error {
	if err := s.injected("MarkSent"); err != nil {
		return err
	}
	if sent.DocumentNumber == nil || sent.FileName == nil || sent.SentAt == nil {
		return ierr.NewError("document number, file name and send time are required").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Mutate(ctx, sent.ID, func(d *disbursement.Disbursement) error {
		if d.Status != types.DisbursementStatusReadyToSend || d.DocumentNumber != nil {
			return ierr.NewErrorf("disbursement %s is not ready to send", d.ID).Mark(ierr.ErrInvalidOperation)
		}
		d.DocumentNumber = lo.ToPtr(*sent.DocumentNumber)
		d.FileName = lo.ToPtr(*sent.FileName)
		d.SentAt = lo.ToPtr(*sent.SentAt)
		d.Status = types.DisbursementStatusSent
		d.UpdatedAt = time.Now().UTC()
		d.UpdatedBy = types.GetUserID(ctx)

		for _, v := range sent.Values {
			stored, ok := lo.Find(d.Values, func(x *disbursement.Value) bool { return x.ID == v.ID })
			if !ok {
				return ierr.NewErrorf("value %s not found", v.ID).Mark(ierr.ErrNotFound)
			}
			stored.DisbursedAmountSubtracted = v.DisbursedAmountSubtracted
			stored.OverawardAmountSubtracted = v.OverawardAmountSubtracted
			stored.RestrictionAmountSubtracted = v.RestrictionAmountSubtracted
			stored.EffectiveAmount = v.EffectiveAmount
		}
		return nil
	})
}

func (s *InMemoryDisbursementStore) MarkFundingBlocked(ctx context.Context, id string, at time.Time) (bool, error) {
	if err := s.injected("MarkFundingBlocked"); err != nil {
		return false, err
	}
	blocked := false
	err := s.InMemoryStore.Mutate(ctx, id, func(d *disbursement.Disbursement) error {
		if d.FundingBlockedAt != nil {
			return nil
		}
		d.FundingBlockedAt = lo.ToPtr(at)
		blocked = true
		return nil
	})
	return blocked, err
}
