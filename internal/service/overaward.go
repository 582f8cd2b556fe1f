package service

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/studentaid/disbursement/internal/api/dto"
	"github.com/studentaid/disbursement/internal/domain/overaward"
	ierr "github.com/studentaid/disbursement/internal/errors"
)

// OverawardService reads and appends to the overaward ledger. Entries are
// never changed, a correction is a new entry.
type OverawardService interface {
	Balance(ctx context.Context, studentID string) (*dto.OverawardBalanceResponse, error)
	BalanceAsOf(ctx context.Context, studentID string, at time.Time) (*dto.OverawardBalanceResponse, error)
	RecordOveraward(ctx context.Context, studentID string, req dto.RecordOverawardRequest) (*dto.LedgerEntryResponse, error)
	ListEntries(ctx context.Context, filter *overaward.Filter) (*dto.ListResponse[*dto.LedgerEntryResponse], error)
}

type overawardService struct {
	ServiceParams
}

func NewOverawardService(params ServiceParams) OverawardService {
	return &overawardService{ServiceParams: params}
}

func (s *overawardService) Balance(ctx context.Context, studentID string) (*dto.OverawardBalanceResponse, error) {
	return s.balance(ctx, studentID, nil)
}

// BalanceAsOf replays the ledger up to and including at
func (s *overawardService) BalanceAsOf(ctx context.Context, studentID string, at time.Time) (*dto.OverawardBalanceResponse, error) {
	return s.balance(ctx, studentID, lo.ToPtr(at.UTC()))
}

func (s *overawardService) balance(ctx context.Context, studentID string, asOf *time.Time) (*dto.OverawardBalanceResponse, error) {
	if studentID == "" {
		return nil, ierr.NewError("student_id is required").
			WithHint("Please provide a student id").
			Mark(ierr.ErrValidation)
	}

	balances, err := s.OverawardRepo.SumByAwardCode(ctx, studentID, asOf)
	if err != nil {
		return nil, err
	}
	return dto.NewOverawardBalanceResponse(studentID, asOf, balances), nil
}

func (s *overawardService) RecordOveraward(ctx context.Context, studentID string, req dto.RecordOverawardRequest) (*dto.LedgerEntryResponse, error) {
	if studentID == "" {
		return nil, ierr.NewError("student_id is required").
			WithHint("Please provide a student id").
			Mark(ierr.ErrValidation)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.StudentRepo.Get(ctx, studentID); err != nil {
		return nil, err
	}

	entry := req.ToLedgerEntry(ctx, studentID)
	if err := s.OverawardRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.Logger.Infow("recorded overaward",
		"student_id", studentID,
		"award_value_code", entry.AwardValueCode,
		"amount", entry.Amount,
		"origin_type", entry.OriginType)

	return &dto.LedgerEntryResponse{LedgerEntry: entry}, nil
}

func (s *overawardService) ListEntries(ctx context.Context, filter *overaward.Filter) (*dto.ListResponse[*dto.LedgerEntryResponse], error) {
	if filter == nil || filter.StudentID == "" {
		return nil, ierr.NewError("student_id is required").
			WithHint("Ledger reads are per student").
			Mark(ierr.ErrValidation)
	}

	entries, err := s.OverawardRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewListResponse(lo.Map(entries, func(e *overaward.LedgerEntry, _ int) *dto.LedgerEntryResponse {
		return &dto.LedgerEntryResponse{LedgerEntry: e}
	})), nil
}
