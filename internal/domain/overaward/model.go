package overaward

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/studentaid/disbursement/internal/types"
)

// LedgerEntry is an append-only overaward movement. A positive amount is
// owed by the student, a negative amount was recovered.
type LedgerEntry struct {
	ID             string                    `db:"id" json:"id"`
	StudentID      string                    `db:"student_id" json:"student_id"`
	DisbursementID *string                   `db:"disbursement_id" json:"disbursement_id,omitempty"`
	AwardValueCode string                    `db:"award_value_code" json:"award_value_code"`
	Amount         decimal.Decimal           `db:"amount" json:"amount"`
	OriginType     types.OverawardOriginType `db:"origin_type" json:"origin_type"`
	CreatedAt      time.Time                 `db:"created_at" json:"created_at"`
	CreatedBy      string                    `db:"created_by" json:"created_by"`
}

// Filter narrows ledger reads. Zero values match everything.
type Filter struct {
	StudentID      string
	AwardValueCode string
	DisbursementID string
	OriginType     types.OverawardOriginType
	// CreatedBefore replays the ledger up to and including this instant
	CreatedBefore *time.Time
}

// Repository persists the ledger. There is no update or delete.
type Repository interface {
	Create(ctx context.Context, e *LedgerEntry) error

	// List returns matching entries oldest first
	List(ctx context.Context, filter *Filter) ([]*LedgerEntry, error)

	// SumByAwardCode returns the running sum per award code of a student,
	// optionally limited to entries created up to asOf
	SumByAwardCode(ctx context.Context, studentID string, asOf *time.Time) (map[string]decimal.Decimal, error)
}
