package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Max = 2
	cfg.AcquireTimeout = time.Second
	return cfg
}

func TestAcquire_RunsBootstrapOnce(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range bootstrapStatements(testConfig().SearchPath) {
		mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	pool := NewWithDB(db, testConfig())
	sess, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sess)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRelease_TruncatesScratchTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range bootstrapStatements(testConfig().SearchPath) {
		mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec("TRUNCATE age_params").WillReturnResult(sqlmock.NewResult(0, 0))

	pool := NewWithDB(db, testConfig())
	sess, err := pool.Acquire(context.Background())
	require.NoError(t, err)

	err = pool.Release(context.Background(), sess)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAcquire_TimesOutWhenPoolExhausted(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range bootstrapStatements(testConfig().SearchPath) {
		mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	cfg := testConfig()
	cfg.Max = 1
	cfg.AcquireTimeout = 50 * time.Millisecond
	pool := NewWithDB(db, cfg)

	sess, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sess)

	_, err = pool.Acquire(context.Background())
	require.Error(t, err)
}

func TestAcquire_UsesConfiguredSearchPath(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cfg := testConfig()
	cfg.SearchPath = "my_graph_schema"

	mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(fmt.Sprintf(`SET search_path = %s`, cfg.SearchPath)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	for range bootstrapStatements(cfg.SearchPath)[2:] {
		mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	pool := NewWithDB(db, cfg)
	sess, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sess)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBootstrap_TreatsDuplicateObjectRaceAsInformational(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	stmts := bootstrapStatements(testConfig().SearchPath)
	mock.ExpectExec(".*").WillReturnError(&pq.Error{Code: "42710", Message: "extension \"age\" already exists"})
	for range stmts[1:] {
		mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	pool := NewWithDB(db, testConfig())
	sess, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sess)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBootstrap_SurfacesHardFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(".*").WillReturnError(&pq.Error{Code: "42704", Message: "extension \"age\" is not available"})

	pool := NewWithDB(db, testConfig())
	_, err = pool.Acquire(context.Background())
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
