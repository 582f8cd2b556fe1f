package feedback

import (
	"context"
	"time"

	"github.com/studentaid/disbursement/internal/types"
)

// Entry is an error reported by the federal system for a sent document.
// Immutable once created.
type Entry struct {
	ID             string    `db:"id" json:"id"`
	DisbursementID string    `db:"disbursement_id" json:"disbursement_id"`
	ErrorCode      string    `db:"error_code" json:"error_code"`
	DateReceived   time.Time `db:"date_received" json:"date_received"`
	BlocksFunding  bool      `db:"blocks_funding" json:"blocks_funding"`
	FileName       string    `db:"file_name" json:"file_name"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	CreatedBy      string    `db:"created_by" json:"created_by"`
}

// NewEntry stamps the id and audit columns of a feedback entry
func NewEntry(ctx context.Context, disbursementID string, code ErrorCode, received time.Time, fileName string) *Entry {
	return &Entry{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_FEEDBACK_ENTRY),
		DisbursementID: disbursementID,
		ErrorCode:      code.Code,
		DateReceived:   received,
		BlocksFunding:  code.BlocksFunding,
		FileName:       fileName,
		CreatedAt:      time.Now().UTC(),
		CreatedBy:      types.GetUserID(ctx),
	}
}

// Repository persists feedback entries
type Repository interface {
	// Create inserts the entry unless one already exists for the same
	// disbursement and error code. Reports whether a row was inserted.
	Create(ctx context.Context, e *Entry) (bool, error)

	ListByDisbursement(ctx context.Context, disbursementID string) ([]*Entry, error)
}
