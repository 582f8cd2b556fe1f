package disbursement

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/studentaid/disbursement/internal/types"
)

// CandidateFilter selects disbursements that may go into the next e-Cert file
type CandidateFilter struct {
	OfferingIntensity types.OfferingIntensity
	// ScheduledBefore includes disbursements scheduled on or before this date
	ScheduledBefore time.Time
}

// Repository defines persistence for disbursements and their value lines
type Repository interface {
	// Create inserts a disbursement with its values
	Create(ctx context.Context, d *Disbursement) error

	// Get retrieves a disbursement with its values
	Get(ctx context.Context, id string) (*Disbursement, error)

	// ListCandidates returns pending or ready to send disbursements without a
	// document number, ordered by scheduled date then creation time
	ListCandidates(ctx context.Context, filter *CandidateFilter) ([]*Disbursement, error)

	// GetSentByDocumentNumber finds a sent disbursement of the stream by document number
	GetSentByDocumentNumber(ctx context.Context, intensity types.OfferingIntensity, documentNumber int64) (*Disbursement, error)

	// PreviouslyDisbursed returns, per award code, what sent disbursements of
	// other assessments of the application paid out and that sent disbursements
	// of this assessment have not already subtracted
	PreviouslyDisbursed(ctx context.Context, applicationID, assessmentID string) (map[string]decimal.Decimal, error)

	// LifetimeDisbursed returns, per award code, the certified amount of every
	// sent disbursement of the student for the offering intensity
	LifetimeDisbursed(ctx context.Context, studentID string, intensity types.OfferingIntensity) (map[string]decimal.Decimal, error)

	// UpdateStatus advances the status, rejecting backward transitions
	UpdateStatus(ctx context.Context, id string, from, to types.DisbursementStatus) error

	// MarkSent stores the document number, file name, send time and the
	// deductions of d and moves it from ReadyToSend to Sent
	MarkSent(ctx context.Context, d *Disbursement) error

	// MarkFundingBlocked sets FundingBlockedAt when it is not set yet.
	// Returns false when the disbursement was already blocked.
	MarkFundingBlocked(ctx context.Context, id string, at time.Time) (bool, error)
}
