package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/studentaid/disbursement/internal/domain/overaward"
	ierr "github.com/studentaid/disbursement/internal/errors"
	"github.com/studentaid/disbursement/internal/logger"
	"github.com/studentaid/disbursement/internal/postgres"
)

type overawardRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewOverawardRepository(db *postgres.DB, logger *logger.Logger) overaward.Repository {
	return &overawardRepository{db: db, logger: logger}
}

func (r *overawardRepository) Create(ctx context.Context, e *overaward.LedgerEntry) error {
	query := `
	INSERT INTO overaward_ledger (
		id, student_id, disbursement_id, award_value_code, amount, origin_type, created_at, created_by
	) VALUES (
		:id, :student_id, :disbursement_id, :award_value_code, :amount, :origin_type, :created_at, :created_by
	)`

	if _, err := r.db.NamedExecContext(ctx, query, e); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to append overaward ledger entry").
			WithReportableDetails(map[string]any{
				"student_id":       e.StudentID,
				"award_value_code": e.AwardValueCode,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *overawardRepository) List(ctx context.Context, filter *overaward.Filter) ([]*overaward.LedgerEntry, error) {
	where, args := ledgerConditions(filter)
	query := `
	SELECT id, student_id, disbursement_id, award_value_code, amount, origin_type, created_at, created_by
	FROM overaward_ledger` + where + `
	ORDER BY created_at, id`

	var entries []*overaward.LedgerEntry
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, ierr.WithError(err).WithHint("Failed to list overaward ledger").Mark(ierr.ErrDatabase)
	}
	return entries, nil
}

func (r *overawardRepository) SumByAwardCode(ctx context.Context, studentID string, asOf *time.Time) (map[string]decimal.Decimal, error) {
	where, args := ledgerConditions(&overaward.Filter{StudentID: studentID, CreatedBefore: asOf})
	query := `
	SELECT award_value_code AS value_code, SUM(amount) AS amount
	FROM overaward_ledger` + where + `
	GROUP BY award_value_code`

	var rows []amountByCode
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, ierr.WithError(err).WithHint("Failed to sum overaward balance").Mark(ierr.ErrDatabase)
	}
	return toAmountMap(rows), nil
}

func ledgerConditions(filter *overaward.Filter) (string, []interface{}) {
	if filter == nil {
		return "", nil
	}

	var conditions []string
	var args []interface{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s $%d", column, len(args)))
	}

	if filter.StudentID != "" {
		add("student_id =", filter.StudentID)
	}
	if filter.AwardValueCode != "" {
		add("award_value_code =", filter.AwardValueCode)
	}
	if filter.DisbursementID != "" {
		add("disbursement_id =", filter.DisbursementID)
	}
	if filter.OriginType != "" {
		add("origin_type =", filter.OriginType)
	}
	if filter.CreatedBefore != nil {
		add("created_at <=", *filter.CreatedBefore)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "\n\tWHERE " + strings.Join(conditions, " AND "), args
}
