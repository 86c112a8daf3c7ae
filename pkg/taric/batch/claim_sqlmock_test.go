package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/tigerroll/tamato/pkg/taric/support/util/exception"
)

// setupClaimMock opens gorm over sqlmock with the MySQL dialect, the
// dialect whose subquery restrictions shape the claim statement.
func setupClaimMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
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
	return NewRepository(gormDB), mock
}

func TestClaimChunk_SQL(t *testing.T) {
	repo, mock := setupClaimMock(t)
	chunk := &ImporterXMLChunk{ID: "c1", BatchID: "b1", RecordCode: strPtr("400"), Chapter: strPtr("01"), Status: ChunkWaiting}

	mock.ExpectExec(`UPDATE importer_xml_chunks SET status = \?, updated_at = \?`).
		WithArgs(ChunkRunning, sqlmock.AnyArg(), "c1", ChunkWaiting, "b1", ChunkRunning, "400", "01").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ClaimChunk(context.Background(), chunk))
	assert.Equal(t, ChunkRunning, chunk.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimChunk_LostRace(t *testing.T) {
	repo, mock := setupClaimMock(t)
	chunk := &ImporterXMLChunk{ID: "c2", BatchID: "b1", Status: ChunkWaiting}

	mock.ExpectExec(`UPDATE importer_xml_chunks SET status`).
		WithArgs(ChunkRunning, sqlmock.AnyArg(), "c2", ChunkWaiting, "b1", ChunkRunning, "", "").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ClaimChunk(context.Background(), chunk)
	assert.True(t, errors.Is(err, exception.ErrChunkNotClaimed))
	assert.True(t, exception.IsFatal(err))
	assert.Equal(t, ChunkWaiting, chunk.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimChunk_DriverError(t *testing.T) {
	repo, mock := setupClaimMock(t)
	chunk := &ImporterXMLChunk{ID: "c3", BatchID: "b1"}

	mock.ExpectExec(`UPDATE importer_xml_chunks`).WillReturnError(errors.New("connection reset by peer"))

	err := repo.ClaimChunk(context.Background(), chunk)
	require.Error(t, err)
	assert.True(t, exception.IsRetryable(err))
}
