// Package executor runs relational and graph queries and normalises AGE's
// agtype return encoding into native Go values (spec.md §4.7), grounded on
// agensgraph/executor.go's ExecuteQuery (column scan into sql.RawBytes,
// ag.ScanEntity vertex/edge decoding).
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/standardbeagle/ageSchemaClient-sub007/ageerr"
	"github.com/standardbeagle/ageSchemaClient-sub007/core"
	"github.com/standardbeagle/ageSchemaClient-sub007/dialect"
	"github.com/standardbeagle/ageSchemaClient-sub007/session"
	"github.com/standardbeagle/ageSchemaClient-sub007/txn"
)

// failer is the subset of *txn.Transaction the executor needs to report a
// failed statement (spec.md §4.6: "Any error while ACTIVE sets FAILED").
type failer interface {
	MarkFailed()
}

// Options controls timeout and retry behavior for one query execution
// (spec.md §4.7).
type Options struct {
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultOptions matches the teacher's own conservative query timeout
// (agensgraph/executor.go's AGENS_DEFAULT_QUERY_TIMEOUT).
func DefaultOptions() Options {
	return Options{Timeout: 50 * time.Second, MaxRetries: 2, RetryDelay: 100 * time.Millisecond}
}

// Executor runs statements against one Session.
type Executor struct {
	sess *session.Session
	tx   failer
}

// New wraps sess for statement execution.
func New(sess *session.Session) *Executor {
	return &Executor{sess: sess}
}

// InTransaction binds t so a failed statement marks it FAILED, matching
// spec.md §4.6.
func (e *Executor) InTransaction(t *txn.Transaction) *Executor {
	return &Executor{sess: e.sess, tx: t}
}

// ExecuteSQL runs a plain relational statement and returns its decoded rows.
func (e *Executor) ExecuteSQL(ctx context.Context, text string, args []interface{}, opts Options) (*core.QueryResult, error) {
	return e.run(ctx, text, args, opts)
}

// ExecuteCypher runs a Cypher-shaped body against graphName. Simple named
// parameters (string, number, boolean, nil) are interpolated as quoted
// literals at generation time; complex parameters must already be in the
// Parameter Bridge and referenced via get_age_param/get_vertices/get_edges
// (spec.md §4.7).
func (e *Executor) ExecuteCypher(ctx context.Context, body string, params map[string]interface{}, graphName string, opts Options) (*core.QueryResult, error) {
	if graphName == "" {
		return nil, ageerr.New(ageerr.QueryError, "graph name must be specified")
	}
	interpolated, err := interpolateSimpleParams(body, params)
	if err != nil {
		return nil, err
	}
	cypherText := fmt.Sprintf("SELECT * FROM cypher('%s', $cypher$ %s $cypher$) AS result(result agtype)", graphName, interpolated)
	return e.run(ctx, cypherText, nil, opts)
}

func interpolateSimpleParams(body string, params map[string]interface{}) (string, error) {
	out := body
	for k, v := range params {
		switch v.(type) {
		case string, bool, nil, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
			out = strings.ReplaceAll(out, "$"+k, dialect.FormatValue(v))
		default:
			return "", ageerr.New(ageerr.QueryError, fmt.Sprintf("parameter %q is complex; route it through the parameter bridge instead of ExecuteCypher's params argument", k))
		}
	}
	return out, nil
}

func (e *Executor) run(ctx context.Context, text string, args []interface{}, opts Options) (*core.QueryResult, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var result *core.QueryResult
	op := func() error {
		res, err := e.execOnce(ctx, text, args)
		if err != nil {
			if e.tx != nil {
				e.tx.MarkFailed()
			}
			return err
		}
		result = res
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = opts.RetryDelay
	policy := backoff.WithMaxRetries(b, uint64(maxInt(opts.MaxRetries, 0)))

	err := backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if isTransient(err) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(policy, ctx))

	if err != nil {
		return nil, classify(err)
	}
	return result, nil
}

func (e *Executor) execOnce(ctx context.Context, text string, args []interface{}) (*core.QueryResult, error) {
	rows, err := e.sess.Querier().QueryContext(ctx, text, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &core.QueryResult{}
	scanBuf := make([]sql.RawBytes, len(keys))
	scanArgs := make([]interface{}, len(keys))
	for i := range scanBuf {
		scanArgs[i] = &scanBuf[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, err
		}
		row := make(core.Row, len(keys))
		for i, key := range keys {
			data := make([]byte, len(scanBuf[i]))
			copy(data, scanBuf[i])
			decoded, derr := decodeDynamic(data)
			if derr != nil {
				return nil, derr
			}
			row[key] = decoded
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	result.RowCount = len(result.Rows)
	return result, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
