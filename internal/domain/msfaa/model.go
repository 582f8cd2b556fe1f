package msfaa

import (
	"context"
	"time"

	"github.com/studentaid/disbursement/internal/types"
)

// Agreement is a Master Student Financial Assistance Agreement
type Agreement struct {
	ID                string                  `db:"id" json:"id"`
	Number            string                  `db:"msfaa_number" json:"msfaa_number"`
	StudentID         string                  `db:"student_id" json:"student_id"`
	OfferingIntensity types.OfferingIntensity `db:"offering_intensity" json:"offering_intensity"`
	SignedDate        *time.Time              `db:"signed_date" json:"signed_date,omitempty"`
	CancelledDate     *time.Time              `db:"cancelled_date" json:"cancelled_date,omitempty"`
	types.BaseModel
}

func (a *Agreement) IsSigned() bool {
	return a.SignedDate != nil && !a.SignedDate.IsZero()
}

// IsCancelled reports whether the agreement was cancelled on or before asOf
func (a *Agreement) IsCancelled(asOf time.Time) bool {
	return a.CancelledDate != nil && !a.CancelledDate.After(asOf)
}

// Repository defines persistence for agreements
type Repository interface {
	Create(ctx context.Context, a *Agreement) error

	// GetByNumber returns the agreement with the given number, ErrNotFound otherwise
	GetByNumber(ctx context.Context, number string) (*Agreement, error)
}
