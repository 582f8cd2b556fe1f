package postgres

import (
	"context"

	"github.com/studentaid/disbursement/internal/domain/feedback"
	ierr "github.com/studentaid/disbursement/internal/errors"
	"github.com/studentaid/disbursement/internal/logger"
	"github.com/studentaid/disbursement/internal/postgres"
)

type feedbackRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewFeedbackRepository(db *postgres.DB, logger *logger.Logger) feedback.Repository {
	return &feedbackRepository{db: db, logger: logger}
}

// Create is keyed by (disbursement_id, error_code) so processing the same
// response file twice does not duplicate entries.
func (r *feedbackRepository) Create(ctx context.Context, e *feedback.Entry) (bool, error) {
	query := `
	INSERT INTO ecert_feedback_entries (
		id, disbursement_id, error_code, date_received, blocks_funding, file_name, created_at, created_by
	) VALUES (
		:id, :disbursement_id, :error_code, :date_received, :blocks_funding, :file_name, :created_at, :created_by
	)
	ON CONFLICT (disbursement_id, error_code) DO NOTHING`

	result, err := r.db.NamedExecContext(ctx, query, e)
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to record e-Cert feedback").
			WithReportableDetails(map[string]any{
				"disbursement_id": e.DisbursementID,
				"error_code":      e.ErrorCode,
			}).
			Mark(ierr.ErrDatabase)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return affected > 0, nil
}

func (r *feedbackRepository) ListByDisbursement(ctx context.Context, disbursementID string) ([]*feedback.Entry, error) {
	query := `
	SELECT id, disbursement_id, error_code, date_received, blocks_funding, file_name, created_at, created_by
	FROM ecert_feedback_entries
	WHERE disbursement_id = $1
	ORDER BY created_at, id`

	var entries []*feedback.Entry
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &entries, query, disbursementID); err != nil {
		return nil, ierr.WithError(err).WithHint("Failed to list e-Cert feedback").Mark(ierr.ErrDatabase)
	}
	return entries, nil
}
