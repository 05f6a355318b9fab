// Package txn implements the transaction state machine of spec.md §4.6,
// grounded on agensgraph/executor.go's queryOptionsFromContext/db.BeginTx
// (sql.TxOptions assembled from context, isolation and read-only derived from
// the query mode).
package txn

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/standardbeagle/ageSchemaClient-sub007/ageerr"
	"github.com/standardbeagle/ageSchemaClient-sub007/session"
)

// State is one of the four states of the transaction lifecycle.
type State int

const (
	Idle State = iota
	Active
	Failed
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Active:
		return "ACTIVE"
	case Failed:
		return "FAILED"
	case Closed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

var savepointPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Options controls isolation level and read-only mode, mirroring
// agensgraph/executor.go's queryOptionsFromContext.
type Options struct {
	Isolation sql.IsolationLevel
	ReadOnly  bool
}

// Transaction wraps a *sql.Tx bound to one Session with the IDLE/ACTIVE/
// FAILED/CLOSED state machine of spec.md §4.6.
type Transaction struct {
	sess  *session.Session
	tx    *sql.Tx
	state State
}

// Begin opens a transaction on sess, moving it from IDLE to ACTIVE.
func Begin(ctx context.Context, sess *session.Session, opts Options) (*Transaction, error) {
	tx, err := sess.Conn().BeginTx(ctx, &sql.TxOptions{Isolation: opts.Isolation, ReadOnly: opts.ReadOnly})
	if err != nil {
		return nil, ageerr.Wrap(ageerr.TransactionError, "begin transaction", err)
	}
	sess.SetTx(tx)
	return &Transaction{sess: sess, tx: tx, state: Active}, nil
}

// State returns the transaction's current state.
func (t *Transaction) State() State {
	return t.state
}

// fail moves the transaction to FAILED, used whenever a statement errors
// while ACTIVE (spec.md §4.6).
func (t *Transaction) fail() {
	if t.state == Active {
		t.state = Failed
	}
}

// Commit commits the transaction. Committing from FAILED returns
// TRANSACTION_ERROR without attempting the commit (spec.md §4.6).
func (t *Transaction) Commit() error {
	if t.state == Failed {
		return ageerr.New(ageerr.TransactionError, "cannot commit a transaction in FAILED state")
	}
	if t.state != Active {
		return ageerr.New(ageerr.TransactionError, fmt.Sprintf("cannot commit a transaction in %s state", t.state))
	}
	if err := t.tx.Commit(); err != nil {
		t.fail()
		return ageerr.Wrap(ageerr.TransactionError, "commit failed", err)
	}
	t.state = Closed
	t.sess.SetTx(nil)
	return nil
}

// Rollback rolls back the transaction from ACTIVE or FAILED, moving it to
// CLOSED (spec.md §4.6).
func (t *Transaction) Rollback() error {
	if t.state != Active && t.state != Failed {
		return ageerr.New(ageerr.TransactionError, fmt.Sprintf("cannot rollback a transaction in %s state", t.state))
	}
	err := t.tx.Rollback()
	t.state = Closed
	t.sess.SetTx(nil)
	if err != nil {
		return ageerr.Wrap(ageerr.TransactionError, "rollback failed", err)
	}
	return nil
}

// MarkFailed records that a statement run by the caller through t.sess
// errored, without the Transaction itself having observed the query. Callers
// (executor) invoke this on any error encountered while t is ACTIVE.
func (t *Transaction) MarkFailed() {
	t.fail()
}

// Save creates a savepoint named name.
func (t *Transaction) Save(ctx context.Context, name string) error {
	if err := checkSavepointName(name); err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		t.fail()
		return ageerr.Wrap(ageerr.TransactionError, "create savepoint", err)
	}
	return nil
}

// RollbackTo rolls back to the named savepoint without closing the
// transaction, clearing FAILED back to ACTIVE (the standard Postgres
// ROLLBACK TO SAVEPOINT semantics).
func (t *Transaction) RollbackTo(ctx context.Context, name string) error {
	if err := checkSavepointName(name); err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); err != nil {
		return ageerr.Wrap(ageerr.TransactionError, "rollback to savepoint", err)
	}
	if t.state == Failed {
		t.state = Active
	}
	return nil
}

// Release releases the named savepoint.
func (t *Transaction) Release(ctx context.Context, name string) error {
	if err := checkSavepointName(name); err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		t.fail()
		return ageerr.Wrap(ageerr.TransactionError, "release savepoint", err)
	}
	return nil
}

func checkSavepointName(name string) error {
	if !savepointPattern.MatchString(name) {
		return ageerr.New(ageerr.TransactionError, fmt.Sprintf("invalid savepoint name %q", name))
	}
	return nil
}

// WithTransaction opens a transaction on sess, runs fn, commits on success
// and rolls back if fn returns an error or panics, always leaving the
// Transaction CLOSED (spec.md §4.6). It does not release the session; callers
// own that via their session.Pool.
func WithTransaction(ctx context.Context, sess *session.Session, opts Options, fn func(*Transaction) error) (err error) {
	t, err := Begin(ctx, sess, opts)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			t.fail()
			_ = t.Rollback()
			panic(r)
		}
	}()

	if err := fn(t); err != nil {
		t.fail()
		if rbErr := t.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	if err := t.Commit(); err != nil {
		if t.State() != Closed {
			_ = t.Rollback()
		}
		return err
	}
	return nil
}

// WithAgeTransaction behaves like WithTransaction but additionally guarantees
// the session's graph_path is set for graphName before fn runs, matching the
// AGE-aware variant spec.md §4.6 describes (Client.AgeTransaction).
func WithAgeTransaction(ctx context.Context, sess *session.Session, graphName string, opts Options, fn func(*Transaction) error) error {
	if err := sess.GraphPath(ctx, graphName); err != nil {
		return ageerr.Wrap(ageerr.TransactionError, "set graph path", err)
	}
	return WithTransaction(ctx, sess, opts, fn)
}
