package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/studentaid/disbursement/internal/domain/disbursement"
	"github.com/studentaid/disbursement/internal/domain/eligibility"
	"github.com/studentaid/disbursement/internal/domain/msfaa"
	"github.com/studentaid/disbursement/internal/domain/student"
	ierr "github.com/studentaid/disbursement/internal/errors"
)

// EligibilityService gathers the history of a disbursement and evaluates it
type EligibilityService interface {
	BuildContext(ctx context.Context, d *disbursement.Disbursement, now time.Time) (*eligibility.Context, error)
	Evaluate(ctx context.Context, d *disbursement.Disbursement) (*eligibility.Result, error)
}

type eligibilityService struct {
	ServiceParams
}

func NewEligibilityService(params ServiceParams) EligibilityService {
	return &eligibilityService{ServiceParams: params}
}

// BuildContext reads every input of the evaluation. A missing student or
// agreement is not an error, the evaluation reports it.
func (s *eligibilityService) BuildContext(ctx context.Context, d *disbursement.Disbursement, now time.Time) (*eligibility.Context, error) {
	st, err := s.StudentRepo.Get(ctx, d.StudentID)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}

	var agreement *msfaa.Agreement
	if d.MSFAANumber != "" {
		agreement, err = s.MSFAARepo.GetByNumber(ctx, d.MSFAANumber)
		if err != nil && !ierr.IsNotFound(err) {
			return nil, err
		}
	}

	var restrictions []*student.Restriction
	if st != nil {
		restrictions, err = s.StudentRepo.ListActiveRestrictions(ctx, st.ID)
		if err != nil {
			return nil, err
		}
	}

	balance, err := s.OverawardRepo.SumByAwardCode(ctx, d.StudentID, nil)
	if err != nil {
		return nil, err
	}

	previous, err := s.DisbursementRepo.PreviouslyDisbursed(ctx, d.ApplicationID, d.AssessmentID)
	if err != nil {
		return nil, err
	}

	lifetime, err := s.DisbursementRepo.LifetimeDisbursed(ctx, d.StudentID, d.OfferingIntensity)
	if err != nil {
		return nil, err
	}

	maximums, err := s.Config.ECert.LifetimeMaximums()
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid part-time lifetime maximums configuration").
			Mark(ierr.ErrSystem)
	}

	return &eligibility.Context{
		Student:             st,
		MSFAA:               agreement,
		Restrictions:        restrictions,
		OverawardBalance:    balance,
		PreviouslyDisbursed: previous,
		LifetimeDisbursed:   lifetime,
		LifetimeMaximums:    maximums,
		Now:                 now,
	}, nil
}

func (s *eligibilityService) Evaluate(ctx context.Context, d *disbursement.Disbursement) (*eligibility.Result, error) {
	c, err := s.BuildContext(ctx, d, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return eligibility.Evaluate(d, c), nil
}

// blockedError describes an ineligible disbursement for logs and summaries
func blockedError(d *disbursement.Disbursement, result *eligibility.Result) error {
	reasons := make([]string, 0, len(result.BlockingReasons))
	for _, r := range result.BlockingReasons {
		reasons = append(reasons, string(r))
	}
	return ierr.NewErrorf("disbursement %s is blocked: %s", d.ID, strings.Join(reasons, ", ")).
		WithHint("Disbursement stays pending until the blocking conditions are resolved").
		WithReportableDetails(map[string]any{
			"disbursement_id": d.ID,
			"reasons":         reasons,
		}).
		Mark(ierr.ErrValidationBlocked)
}

// addAmounts returns a copy of base with delta added per code
func addAmounts(base map[string]decimal.Decimal, delta map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(base))
	for code, amount := range base {
		out[code] = amount
	}
	for code, amount := range delta {
		out[code] = out[code].Add(amount)
	}
	return out
}
