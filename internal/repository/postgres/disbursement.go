package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/studentaid/disbursement/internal/domain/disbursement"
	ierr "github.com/studentaid/disbursement/internal/errors"
	"github.com/studentaid/disbursement/internal/logger"
	"github.com/studentaid/disbursement/internal/postgres"
	"github.com/studentaid/disbursement/internal/types"
)

const disbursementColumns = `
	id, application_id, assessment_id, student_id, msfaa_number, offering_intensity,
	document_number, scheduled_date, status, disability_funding_intent, file_name,
	sent_at, funding_blocked_at, created_at, updated_at, created_by, updated_by`

const disbursementValueColumns = `
	id, disbursement_id, value_type, value_code, value_amount, disbursed_amount_subtracted,
	overaward_amount_subtracted, restriction_amount_subtracted, effective_amount`

type disbursementRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewDisbursementRepository(db *postgres.DB, logger *logger.Logger) disbursement.Repository {
	return &disbursementRepository{db: db, logger: logger}
}

func (r *disbursementRepository) Create(ctx context.Context, d *disbursement.Disbursement) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		query := `
		INSERT INTO disbursements (` + disbursementColumns + `
		) VALUES (
			:id, :application_id, :assessment_id, :student_id, :msfaa_number, :offering_intensity,
			:document_number, :scheduled_date, :status, :disability_funding_intent, :file_name,
			:sent_at, :funding_blocked_at, :created_at, :updated_at, :created_by, :updated_by
		)`
		if _, err := r.db.NamedExecContext(ctx, query, d); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to create disbursement").
				WithReportableDetails(map[string]any{"disbursement_id": d.ID}).
				Mark(ierr.ErrDatabase)
		}

		valueQuery := `
		INSERT INTO disbursement_values (` + disbursementValueColumns + `
		) VALUES (
			:id, :disbursement_id, :value_type, :value_code, :value_amount, :disbursed_amount_subtracted,
			:overaward_amount_subtracted, :restriction_amount_subtracted, :effective_amount
		)`
		for _, v := range d.Values {
			v.DisbursementID = d.ID
			if _, err := r.db.NamedExecContext(ctx, valueQuery, v); err != nil {
				return ierr.WithError(err).
					WithHint("Failed to create disbursement value").
					WithReportableDetails(map[string]any{"disbursement_id": d.ID, "value_code": v.ValueCode}).
					Mark(ierr.ErrDatabase)
			}
		}
		return nil
	})
}

func (r *disbursementRepository) Get(ctx context.Context, id string) (*disbursement.Disbursement, error) {
	query := `SELECT ` + disbursementColumns + ` FROM disbursements WHERE id = $1`

	var d disbursement.Disbursement
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &d, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("disbursement not found").
				WithHintf("Disbursement %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).WithHint("Failed to get disbursement").Mark(ierr.ErrDatabase)
	}

	if err := r.loadValues(ctx, []*disbursement.Disbursement{&d}); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *disbursementRepository) ListCandidates(ctx context.Context, filter *disbursement.CandidateFilter) ([]*disbursement.Disbursement, error) {
	query := `
	SELECT ` + disbursementColumns + `
	FROM disbursements
	WHERE offering_intensity = $1
		AND status IN ($2, $3)
		AND document_number IS NULL
		AND scheduled_date <= $4
	ORDER BY scheduled_date, created_at, id`

	var list []*disbursement.Disbursement
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &list, query,
		filter.OfferingIntensity,
		types.DisbursementStatusPending,
		types.DisbursementStatusReadyToSend,
		filter.ScheduledBefore,
	)
	if err != nil {
		return nil, ierr.WithError(err).WithHint("Failed to list e-Cert candidates").Mark(ierr.ErrDatabase)
	}

	if err := r.loadValues(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *disbursementRepository) GetSentByDocumentNumber(ctx context.Context, intensity types.OfferingIntensity, documentNumber int64) (*disbursement.Disbursement, error) {
	query := `
	SELECT ` + disbursementColumns + `
	FROM disbursements
	WHERE offering_intensity = $1 AND document_number = $2 AND status = $3`

	var d disbursement.Disbursement
	err := r.db.GetQuerier(ctx).GetContext(ctx, &d, query, intensity, documentNumber, types.DisbursementStatusSent)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("sent disbursement not found").
				WithHintf("No sent disbursement has document number %d", documentNumber).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).WithHint("Failed to get disbursement by document number").Mark(ierr.ErrDatabase)
	}

	if err := r.loadValues(ctx, []*disbursement.Disbursement{&d}); err != nil {
		return nil, err
	}
	return &d, nil
}

type amountByCode struct {
	ValueCode string          `db:"value_code"`
	Amount    decimal.Decimal `db:"amount"`
}

func (r *disbursementRepository) PreviouslyDisbursed(ctx context.Context, applicationID, assessmentID string) (map[string]decimal.Decimal, error) {
	// sent amounts of other assessments, less what this assessment already deducted
	query := `
	SELECT v.value_code,
		SUM(CASE WHEN d.assessment_id <> $2 THEN v.effective_amount ELSE -v.disbursed_amount_subtracted END) AS amount
	FROM disbursement_values v
	JOIN disbursements d ON d.id = v.disbursement_id
	WHERE d.application_id = $1 AND d.status = $3
	GROUP BY v.value_code`

	var rows []amountByCode
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query, applicationID, assessmentID, types.DisbursementStatusSent)
	if err != nil {
		return nil, ierr.WithError(err).WithHint("Failed to sum previously disbursed amounts").Mark(ierr.ErrDatabase)
	}
	return toAmountMap(rows), nil
}

func (r *disbursementRepository) LifetimeDisbursed(ctx context.Context, studentID string, intensity types.OfferingIntensity) (map[string]decimal.Decimal, error) {
	query := `
	SELECT v.value_code, SUM(v.effective_amount) AS amount
	FROM disbursement_values v
	JOIN disbursements d ON d.id = v.disbursement_id
	WHERE d.student_id = $1 AND d.offering_intensity = $2 AND d.status = $3
	GROUP BY v.value_code`

	var rows []amountByCode
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query, studentID, intensity, types.DisbursementStatusSent)
	if err != nil {
		return nil, ierr.WithError(err).WithHint("Failed to sum lifetime disbursed amounts").Mark(ierr.ErrDatabase)
	}
	return toAmountMap(rows), nil
}

func (r *disbursementRepository) UpdateStatus(ctx context.Context, id string, from, to types.DisbursementStatus) error {
	if !from.CanTransitionTo(to) {
		return ierr.NewErrorf("cannot move disbursement from %s to %s", from, to).
			WithHint("Disbursement status can only move forward").
			Mark(ierr.ErrInvalidOperation)
	}

	query := `
	UPDATE disbursements
	SET status = $1, updated_at = $2, updated_by = $3
	WHERE id = $4 AND status = $5`

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		to, time.Now().UTC(), types.GetUserID(ctx), id, from)
	if err != nil {
		return ierr.WithError(err).WithHint("Failed to update disbursement status").Mark(ierr.ErrDatabase)
	}
	return expectOneRow(result, id, "disbursement is not in status "+string(from))
}

func (r *disbursementRepository) MarkSent(ctx context.Context, d *disbursement.Disbursement) error {
	if d.DocumentNumber == nil || d.FileName == nil || d.SentAt == nil {
		return ierr.NewError("document number, file name and send time are required").
			WithHint("Disbursement cannot be marked as sent").
			Mark(ierr.ErrValidation)
	}

	return r.db.WithTx(ctx, func(ctx context.Context) error {
		query := `
		UPDATE disbursements
		SET status = $1, document_number = $2, file_name = $3, sent_at = $4, updated_at = $5, updated_by = $6
		WHERE id = $7 AND status = $8 AND document_number IS NULL`

		result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
			types.DisbursementStatusSent, *d.DocumentNumber, *d.FileName, *d.SentAt,
			time.Now().UTC(), types.GetUserID(ctx),
			d.ID, types.DisbursementStatusReadyToSend)
		if err != nil {
			return ierr.WithError(err).WithHint("Failed to mark disbursement as sent").Mark(ierr.ErrDatabase)
		}
		if err := expectOneRow(result, d.ID, "disbursement is not ready to send or already has a document number"); err != nil {
			return err
		}

		valueQuery := `
		UPDATE disbursement_values
		SET disbursed_amount_subtracted = :disbursed_amount_subtracted,
			overaward_amount_subtracted = :overaward_amount_subtracted,
			restriction_amount_subtracted = :restriction_amount_subtracted,
			effective_amount = :effective_amount
		WHERE id = :id`
		for _, v := range d.Values {
			if _, err := r.db.NamedExecContext(ctx, valueQuery, v); err != nil {
				return ierr.WithError(err).
					WithHint("Failed to store disbursement deductions").
					WithReportableDetails(map[string]any{"disbursement_id": d.ID, "value_code": v.ValueCode}).
					Mark(ierr.ErrDatabase)
			}
		}
		return nil
	})
}

func (r *disbursementRepository) MarkFundingBlocked(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `
	UPDATE disbursements
	SET funding_blocked_at = $1, updated_at = $2, updated_by = $3
	WHERE id = $4 AND funding_blocked_at IS NULL`

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, at, time.Now().UTC(), types.GetUserID(ctx), id)
	if err != nil {
		return false, ierr.WithError(err).WithHint("Failed to block disbursement funding").Mark(ierr.ErrDatabase)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return affected > 0, nil
}

func (r *disbursementRepository) loadValues(ctx context.Context, list []*disbursement.Disbursement) error {
	if len(list) == 0 {
		return nil
	}

	query := `
	SELECT ` + disbursementValueColumns + `
	FROM disbursement_values
	WHERE disbursement_id = ANY($1)
	ORDER BY disbursement_id, id`

	ids := lo.Map(list, func(d *disbursement.Disbursement, _ int) string { return d.ID })
	var values []*disbursement.Value
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &values, query, pq.Array(ids)); err != nil {
		return ierr.WithError(err).WithHint("Failed to load disbursement values").Mark(ierr.ErrDatabase)
	}

	byDisbursement := lo.GroupBy(values, func(v *disbursement.Value) string { return v.DisbursementID })
	for _, d := range list {
		d.Values = byDisbursement[d.ID]
	}
	return nil
}

func toAmountMap(rows []amountByCode) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		out[row.ValueCode] = row.Amount
	}
	return out
}

func expectOneRow(result sql.Result, id, reason string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewErrorf("no row updated for %s: %s", id, reason).
			WithHint(reason).
			Mark(ierr.ErrInvalidOperation)
	}
	return nil
}
