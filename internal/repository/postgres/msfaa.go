package postgres

import (
	"context"
	"database/sql"

	"github.com/studentaid/disbursement/internal/domain/msfaa"
	ierr "github.com/studentaid/disbursement/internal/errors"
	"github.com/studentaid/disbursement/internal/logger"
	"github.com/studentaid/disbursement/internal/postgres"
)

type msfaaRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewMSFAARepository(db *postgres.DB, logger *logger.Logger) msfaa.Repository {
	return &msfaaRepository{db: db, logger: logger}
}

func (r *msfaaRepository) Create(ctx context.Context, a *msfaa.Agreement) error {
	query := `
	INSERT INTO msfaa_agreements (
		id, msfaa_number, student_id, offering_intensity, signed_date, cancelled_date,
		created_at, updated_at, created_by, updated_by
	) VALUES (
		:id, :msfaa_number, :student_id, :offering_intensity, :signed_date, :cancelled_date,
		:created_at, :updated_at, :created_by, :updated_by
	)`

	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create MSFAA").
			WithReportableDetails(map[string]any{"msfaa_number": a.Number}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *msfaaRepository) GetByNumber(ctx context.Context, number string) (*msfaa.Agreement, error) {
	query := `
	SELECT id, msfaa_number, student_id, offering_intensity, signed_date, cancelled_date,
		created_at, updated_at, created_by, updated_by
	FROM msfaa_agreements
	WHERE msfaa_number = $1`

	var a msfaa.Agreement
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &a, query, number); err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("msfaa not found").
				WithHintf("MSFAA %s was not found", number).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).WithHint("Failed to get MSFAA").Mark(ierr.ErrDatabase)
	}
	return &a, nil
}
