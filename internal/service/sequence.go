package service

import (
	"context"

	ierr "github.com/studentaid/disbursement/internal/errors"
	"github.com/studentaid/disbursement/internal/types"
)

// SequenceService hands out gapless numbers from named counters
type SequenceService interface {
	NextValue(ctx context.Context, name string) (int64, error)
	NextDocumentNumber(ctx context.Context, intensity types.OfferingIntensity) (int64, error)
	NextFileSequence(ctx context.Context, intensity types.OfferingIntensity) (int64, error)
	Current(ctx context.Context, name string) (int64, error)
}

type sequenceService struct {
	ServiceParams
}

func NewSequenceService(params ServiceParams) SequenceService {
	return &sequenceService{ServiceParams: params}
}

// NextValue never runs inside the caller's transaction: the increment commits
// on its own so the counter row lock is not held across file I/O.
func (s *sequenceService) NextValue(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, ierr.NewError("sequence name is required").
			WithHint("Please provide a sequence name").
			Mark(ierr.ErrValidation)
	}

	value, err := s.SequenceRepo.NextValue(ctx, name)
	if err != nil {
		s.Logger.Errorw("failed to allocate sequence value", "sequence", name, "error", err)
		if ierr.IsSequenceAllocation(err) {
			return 0, err
		}
		return 0, ierr.WithError(err).
			WithHintf("Could not allocate the next %s value", name).
			Mark(ierr.ErrSequenceAllocation)
	}

	s.Metrics.RecordSequenceAllocation(name)
	s.Logger.Debugw("allocated sequence value", "sequence", name, "value", value)
	return value, nil
}

func (s *sequenceService) NextDocumentNumber(ctx context.Context, intensity types.OfferingIntensity) (int64, error) {
	return s.NextValue(ctx, types.DocumentNumberSequence(intensity))
}

func (s *sequenceService) NextFileSequence(ctx context.Context, intensity types.OfferingIntensity) (int64, error) {
	return s.NextValue(ctx, types.FileSequence(intensity))
}

func (s *sequenceService) Current(ctx context.Context, name string) (int64, error) {
	return s.SequenceRepo.Current(ctx, name)
}
