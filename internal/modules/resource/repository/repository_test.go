package repository

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"newera.app/reentry/internal/entity"
)

// clicksUntouched matches like the default regexp matcher but rejects any
// resources UPDATE that writes the clicks column.
var clicksUntouched = sqlmock.QueryMatcherFunc(func(expectedSQL, actualSQL string) error {
	if err := sqlmock.QueryMatcherRegexp.Match(expectedSQL, actualSQL); err != nil {
		return err
	}
	if strings.HasPrefix(actualSQL, `UPDATE "resources"`) && strings.Contains(actualSQL, `"clicks"`) {
		return fmt.Errorf("update writes clicks: %s", actualSQL)
	}
	return nil
})

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(clicksUntouched))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestUpdateLeavesClicksAlone(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewResourceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "resources" SET "name"=$1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res := &entity.Resource{ID: 7, Name: "Food Bank", State: "PA", City: "Pittsburgh", Clicks: 3, IsActive: true}
	require.NoError(t, repo.Update(context.Background(), res, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
