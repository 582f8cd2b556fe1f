package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/samber/lo"
	"github.com/studentaid/disbursement/internal/domain/student"
	ierr "github.com/studentaid/disbursement/internal/errors"
	"github.com/studentaid/disbursement/internal/logger"
	"github.com/studentaid/disbursement/internal/postgres"
	"github.com/studentaid/disbursement/internal/types"
)

const studentColumns = `
	id, sin, sin_status, disability_status, first_name, last_name, birth_date, gender,
	email, postal_code, created_at, updated_at, created_by, updated_by`

type studentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewStudentRepository(db *postgres.DB, logger *logger.Logger) student.Repository {
	return &studentRepository{db: db, logger: logger}
}

func (r *studentRepository) Create(ctx context.Context, s *student.Student) error {
	query := `
	INSERT INTO students (` + studentColumns + `
	) VALUES (
		:id, :sin, :sin_status, :disability_status, :first_name, :last_name, :birth_date, :gender,
		:email, :postal_code, :created_at, :updated_at, :created_by, :updated_by
	)`

	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create student").
			WithReportableDetails(map[string]any{"student_id": s.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *studentRepository) Get(ctx context.Context, id string) (*student.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`

	var s student.Student
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &s, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("student not found").
				WithHintf("Student %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).WithHint("Failed to get student").Mark(ierr.ErrDatabase)
	}
	return &s, nil
}

// restrictionRow maps the postgres text arrays of a restriction
type restrictionRow struct {
	ID                 string         `db:"id"`
	StudentID          string         `db:"student_id"`
	Code               string         `db:"code"`
	ActionTypes        pq.StringArray `db:"action_types"`
	AffectedValueCodes pq.StringArray `db:"affected_value_codes"`
	Active             bool           `db:"active"`
	types.BaseModel
}

func (row *restrictionRow) toDomain() *student.Restriction {
	return &student.Restriction{
		ID:        row.ID,
		StudentID: row.StudentID,
		Code:      row.Code,
		ActionTypes: lo.Map(row.ActionTypes, func(a string, _ int) types.RestrictionActionType {
			return types.RestrictionActionType(a)
		}),
		AffectedValueCodes: []string(row.AffectedValueCodes),
		Active:             row.Active,
		BaseModel:          row.BaseModel,
	}
}

func (r *studentRepository) CreateRestriction(ctx context.Context, restriction *student.Restriction) error {
	query := `
	INSERT INTO student_restrictions (
		id, student_id, code, action_types, affected_value_codes, active,
		created_at, updated_at, created_by, updated_by
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	actions := lo.Map(restriction.ActionTypes, func(a types.RestrictionActionType, _ int) string { return string(a) })
	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		restriction.ID,
		restriction.StudentID,
		restriction.Code,
		pq.Array(actions),
		pq.Array(restriction.AffectedValueCodes),
		restriction.Active,
		restriction.CreatedAt,
		restriction.UpdatedAt,
		restriction.CreatedBy,
		restriction.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create student restriction").
			WithReportableDetails(map[string]any{"student_id": restriction.StudentID, "code": restriction.Code}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *studentRepository) ListActiveRestrictions(ctx context.Context, studentID string) ([]*student.Restriction, error) {
	query := `
	SELECT id, student_id, code, action_types, affected_value_codes, active,
		created_at, updated_at, created_by, updated_by
	FROM student_restrictions
	WHERE student_id = $1 AND active
	ORDER BY created_at, id`

	var rows []*restrictionRow
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, ierr.WithError(err).WithHint("Failed to list student restrictions").Mark(ierr.ErrDatabase)
	}
	return lo.Map(rows, func(row *restrictionRow, _ int) *student.Restriction { return row.toDomain() }), nil
}
