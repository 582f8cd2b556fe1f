package postgres

import (
	"context"
	"database/sql"

	"github.com/studentaid/disbursement/internal/domain/sequence"
	ierr "github.com/studentaid/disbursement/internal/errors"
	"github.com/studentaid/disbursement/internal/logger"
	"github.com/studentaid/disbursement/internal/postgres"
)

type sequenceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSequenceRepository(db *postgres.DB, logger *logger.Logger) sequence.Repository {
	return &sequenceRepository{db: db, logger: logger}
}

// NextValue relies on the row lock taken by the upsert: concurrent callers
// on the same name serialize on the conflicting row and each reads its own
// incremented value.
func (r *sequenceRepository) NextValue(ctx context.Context, name string) (int64, error) {
	query := `
		INSERT INTO sequence_counters (sequence_name, current_value, created_at, updated_at)
		VALUES ($1, 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (sequence_name) DO UPDATE
		SET current_value = sequence_counters.current_value + 1,
			updated_at = CURRENT_TIMESTAMP
		RETURNING current_value`

	var value int64
	if err := r.db.GetQuerier(ctx).QueryRowxContext(ctx, query, name).Scan(&value); err != nil {
		return 0, ierr.WithError(err).
			WithHintf("Could not allocate the next value of %s", name).
			WithReportableDetails(map[string]any{"sequence_name": name}).
			Mark(ierr.ErrSequenceAllocation)
	}

	r.logger.Debugw("allocated sequence value", "sequence_name", name, "value", value)
	return value, nil
}

func (r *sequenceRepository) Current(ctx context.Context, name string) (int64, error) {
	query := `SELECT current_value FROM sequence_counters WHERE sequence_name = $1`

	var value int64
	err := r.db.GetQuerier(ctx).GetContext(ctx, &value, query, name)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, ierr.WithError(err).
			WithHintf("Could not read sequence %s", name).
			Mark(ierr.ErrDatabase)
	}
	return value, nil
}
