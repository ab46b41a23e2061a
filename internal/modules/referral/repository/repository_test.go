package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"newera.app/reentry/internal/entity"
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

func newReferral() *entity.Referral {
	staffID := uuid.New()
	caseUserID := uint(3)
	return &entity.Referral{
		ReferralDate: time.Date(2024, 3, 5, 14, 7, 9, 123456000, time.UTC),
		Notes:        "Please visit.",
		UserID:       &staffID,
		CaseUserID:   &caseUserID,
	}
}

func TestCreateWithResourcesCommitsReferralAndLinks(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReferralRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "referrals"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectExec(`INSERT INTO "referral_resources"`).
		WithArgs(42, 7, 42, 9).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	referral := newReferral()
	err := repo.CreateWithResources(context.Background(), referral, []uint{7, 9})

	require.NoError(t, err)
	assert.Equal(t, uint(42), referral.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithResourcesRollsBackWhenLinksFail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReferralRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "referrals"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(43))
	mock.ExpectExec(`INSERT INTO "referral_resources"`).
		WillReturnError(errors.New(`insert or update on table "referral_resources" violates foreign key constraint`))
	mock.ExpectRollback()

	err := repo.CreateWithResources(context.Background(), newReferral(), []uint{7, 999})

	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithResourcesRequiresResources(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReferralRepository(db)

	err := repo.CreateWithResources(context.Background(), newReferral(), nil)

	assert.ErrorIs(t, err, errNoResources)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkAccessedOnlyOnce(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReferralRepository(db)
	at := time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "referrals" SET "date_accessed"=\$1 WHERE id = \$2 AND date_accessed IS NULL`).
		WithArgs(at, 42).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "referrals" SET "date_accessed"=\$1 WHERE id = \$2 AND date_accessed IS NULL`).
		WithArgs(at, 42).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	first, err := repo.MarkAccessed(context.Background(), 42, at)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := repo.MarkAccessed(context.Background(), 42, at)
	require.NoError(t, err)
	assert.False(t, second)

	assert.NoError(t, mock.ExpectationsWereMet())
}
