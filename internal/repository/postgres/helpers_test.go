package postgres

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/studentaid/disbursement/internal/logger"
	"github.com/studentaid/disbursement/internal/postgres"
)

func newMockDB(t *testing.T) (*postgres.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return postgres.New(sqlx.NewDb(sqlDB, "postgres"), logger.NewNopLogger()), mock
}
