package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestFindByIDExcludesRemovedClients(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCaseLoadRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "case_load_users" WHERE id = $1 AND "case_load_users"."deleted_at" IS NULL`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name"}))

	client, err := repo.FindByID(context.Background(), 5)

	assert.Nil(t, client)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteIsSoft(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCaseLoadRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "case_load_users" SET "deleted_at"=$1 WHERE id = $2 AND "case_load_users"."deleted_at" IS NULL`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}
