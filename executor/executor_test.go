package executor

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/ageSchemaClient-sub007/session"
)

func newTestSession(t *testing.T) (*session.Session, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	cfg := session.DefaultConfig()
	cfg.Max = 1
	pool := session.NewWithDB(db, cfg)
	sess, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	return sess, mock, func() { db.Close() }
}

func TestExecuteSQL_DecodesRows(t *testing.T) {
	sess, mock, cleanup := newTestSession(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"name", "age", "active"}).
		AddRow(`"Test Person"`, `30`, `true`)
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	ex := New(sess)
	res, err := ex.ExecuteSQL(context.Background(), "SELECT name, age, active FROM x", nil, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Test Person", res.Rows[0]["name"])
	assert.Equal(t, float64(30), res.Rows[0]["age"])
	assert.Equal(t, true, res.Rows[0]["active"])
}

func TestExecuteCypher_RequiresGraphName(t *testing.T) {
	sess, _, cleanup := newTestSession(t)
	defer cleanup()

	ex := New(sess)
	_, err := ex.ExecuteCypher(context.Background(), "RETURN 1", nil, "", DefaultOptions())
	assert.Error(t, err)
}

func TestExecuteCypher_RejectsComplexInlineParams(t *testing.T) {
	sess, _, cleanup := newTestSession(t)
	defer cleanup()

	ex := New(sess)
	_, err := ex.ExecuteCypher(context.Background(), "RETURN $x", map[string]interface{}{
		"x": map[string]interface{}{"nested": true},
	}, "my_graph", DefaultOptions())
	assert.Error(t, err)
}

func TestExecuteCypher_InterpolatesSimpleParams(t *testing.T) {
	sess, mock, cleanup := newTestSession(t)
	defer cleanup()

	mock.ExpectQuery(`n\.age = 30 RETURN n`).WillReturnRows(sqlmock.NewRows([]string{"result"}))

	ex := New(sess)
	opts := DefaultOptions()
	opts.Timeout = time.Second
	_, err := ex.ExecuteCypher(context.Background(), "MATCH (n) WHERE n.age = $age RETURN n", map[string]interface{}{
		"age": 30,
	}, "my_graph", opts)
	require.NoError(t, err)
}
