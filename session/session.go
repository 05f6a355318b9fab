package session

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Querier is satisfied by both *sql.Conn and *sql.Tx, letting executor and
// param share code regardless of whether a transaction is currently open on
// the session.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Session is a pooled physical connection plus its bootstrapped bridge state
// (spec.md glossary). The underlying *sql.Conn is pinned for the session's
// lifetime so the session-scoped scratch table and search_path stay visible
// across statements (spec.md §3: "rows from one session are never visible to
// another").
type Session struct {
	pool *Pool
	conn *sql.Conn
	tx   *sql.Tx
}

// Querier returns the active transaction if one is open, otherwise the
// session's pinned connection.
func (s *Session) Querier() Querier {
	if s.tx != nil {
		return s.tx
	}
	return s.conn
}

// Conn exposes the pinned connection, needed to start a transaction (txn
// package) or run DDL/administrative statements.
func (s *Session) Conn() *sql.Conn {
	return s.conn
}

// SetTx is called by the txn package when a transaction begins or ends on
// this session.
func (s *Session) SetTx(tx *sql.Tx) {
	s.tx = tx
}

// Tx returns the currently open transaction, or nil.
func (s *Session) Tx() *sql.Tx {
	return s.tx
}

// GraphPath sets search_path to expose the named graph's schema for
// subsequent Cypher queries, mirroring the teacher's
// `set graph_path=<graphName>` prelude (agensgraph/executor.go).
func (s *Session) GraphPath(ctx context.Context, graphName string) error {
	if !identPattern.MatchString(graphName) {
		return fmt.Errorf("invalid graph name %q", graphName)
	}
	_, err := s.Querier().ExecContext(ctx, `SET search_path = `+graphName+`, ag_catalog, "$user", public`)
	return err
}
