package storage

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupStoreMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		mock.ExpectClose()
		_ = sqlDB.Close()
	})
	return NewStore(gormDB), mock
}

func TestCreateTransaction_LocksWorkbasket(t *testing.T) {
	s, mock := setupStoreMock(t)

	mock.ExpectQuery("SELECT `id` FROM `workbaskets` WHERE id = \\? .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("wb-1"))
	mock.ExpectQuery("SELECT MAX\\(sequence\\) FROM `transactions` WHERE workbasket_id = \\?").
		WithArgs("wb-1").
		WillReturnRows(sqlmock.NewRows([]string{"MAX(sequence)"}).AddRow(4))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `transactions`").WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectCommit()

	txn, err := s.CreateTransaction(context.Background(), "wb-1", "42")
	require.NoError(t, err)
	assert.EqualValues(t, 5, txn.Sequence)
	assert.EqualValues(t, 9, txn.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTransaction_UnknownWorkbasket(t *testing.T) {
	s, mock := setupStoreMock(t)

	mock.ExpectQuery("SELECT `id` FROM `workbaskets`.*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.CreateTransaction(context.Background(), "missing", "1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
