package txn

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/ageSchemaClient-sub007/session"
)

func newTestSession(t *testing.T) (*session.Session, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))

	cfg := session.DefaultConfig()
	cfg.Max = 1
	pool := session.NewWithDB(db, cfg)
	sess, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	return sess, mock, func() { db.Close() }
}

func TestBeginCommit(t *testing.T) {
	sess, mock, cleanup := newTestSession(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectCommit()

	tx, err := Begin(context.Background(), sess, Options{})
	require.NoError(t, err)
	assert.Equal(t, Active, tx.State())

	require.NoError(t, tx.Commit())
	assert.Equal(t, Closed, tx.State())
}

func TestCommitFromFailedErrors(t *testing.T) {
	sess, mock, cleanup := newTestSession(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectRollback()

	tx, err := Begin(context.Background(), sess, Options{})
	require.NoError(t, err)
	tx.MarkFailed()
	assert.Equal(t, Failed, tx.State())

	err = tx.Commit()
	assert.Error(t, err)

	require.NoError(t, tx.Rollback())
	assert.Equal(t, Closed, tx.State())
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	sess, mock, cleanup := newTestSession(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := WithTransaction(context.Background(), sess, Options{}, func(t *Transaction) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestWithTransaction_CommitsOnSuccess(t *testing.T) {
	sess, mock, cleanup := newTestSession(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := WithTransaction(context.Background(), sess, Options{}, func(t *Transaction) error {
		return nil
	})
	require.NoError(t, err)
}
