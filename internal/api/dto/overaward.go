package dto

import (
	"context"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/studentaid/disbursement/internal/domain/overaward"
	ierr "github.com/studentaid/disbursement/internal/errors"
	"github.com/studentaid/disbursement/internal/types"
	"github.com/studentaid/disbursement/internal/validator"
)

// RecordOverawardRequest appends one entry to a student's ledger. A positive
// amount increases what the student owes.
type RecordOverawardRequest struct {
	AwardValueCode string                    `json:"award_value_code" validate:"required,award_code"`
	Amount         decimal.Decimal           `json:"amount" validate:"amount"`
	OriginType     types.OverawardOriginType `json:"origin_type,omitempty"`
	DisbursementID *string                   `json:"disbursement_id,omitempty" validate:"omitempty"`
}

func (r *RecordOverawardRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	if r.OriginType == "" {
		r.OriginType = types.OverawardOriginManualDeduction
	}
	if err := r.OriginType.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Unknown overaward origin type").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *RecordOverawardRequest) ToLedgerEntry(ctx context.Context, studentID string) *overaward.LedgerEntry {
	return &overaward.LedgerEntry{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_OVERAWARD),
		StudentID:      studentID,
		DisbursementID: r.DisbursementID,
		AwardValueCode: strings.ToUpper(r.AwardValueCode),
		Amount:         r.Amount,
		OriginType:     r.OriginType,
		CreatedAt:      time.Now().UTC(),
		CreatedBy:      types.GetUserID(ctx),
	}
}

// OverawardBalanceResponse is the outstanding balance per award code
type OverawardBalanceResponse struct {
	StudentID string                     `json:"student_id"`
	AsOf      *time.Time                 `json:"as_of,omitempty"`
	Balances  map[string]decimal.Decimal `json:"balances"`
	Total     decimal.Decimal            `json:"total"`
}

func NewOverawardBalanceResponse(studentID string, asOf *time.Time, balances map[string]decimal.Decimal) *OverawardBalanceResponse {
	if balances == nil {
		balances = map[string]decimal.Decimal{}
	}
	return &OverawardBalanceResponse{
		StudentID: studentID,
		AsOf:      asOf,
		Balances:  balances,
		Total:     decimal.Sum(decimal.Zero, lo.Values(balances)...),
	}
}

type LedgerEntryResponse struct {
	*overaward.LedgerEntry
}
