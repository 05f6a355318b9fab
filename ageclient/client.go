// Package ageclient is the caller-facing façade spec.md §6 describes:
// Client.connect/close, createQueryBuilder, createBatchLoader, transaction and
// ageTransaction. Grounded on the teacher's core.GetConnection/
// core.RegisterConnectorFactory wiring, narrowed from a multi-backend
// registry to a single-engine constructor (non-goal: other graph databases).
package ageclient

import (
	"context"

	"github.com/standardbeagle/ageSchemaClient-sub007/core"
	"github.com/standardbeagle/ageSchemaClient-sub007/executor"
	"github.com/standardbeagle/ageSchemaClient-sub007/loader"
	"github.com/standardbeagle/ageSchemaClient-sub007/param"
	"github.com/standardbeagle/ageSchemaClient-sub007/query"
	"github.com/standardbeagle/ageSchemaClient-sub007/schema"
	"github.com/standardbeagle/ageSchemaClient-sub007/session"
	"github.com/standardbeagle/ageSchemaClient-sub007/txn"
)

// Config is the connection/pool configuration accepted by Connect.
type Config = session.Config

// Client owns one connection pool and hands out schema-aware builders,
// loaders and transaction scopes over it.
type Client struct {
	pool *session.Pool
}

// Connect opens a pool against cfg. No physical connection is made until the
// first operation.
func Connect(cfg Config) (*Client, error) {
	pool, err := session.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{pool: pool}, nil
}

// Close shuts the pool down; no further operations on this Client will
// succeed afterward.
func (c *Client) Close() error {
	return c.pool.Shutdown()
}

// Ping performs a cheap liveness probe against the pool.
func (c *Client) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

// QueryBuilder wraps query.Builder with the session it borrowed to run,
// releasing that session back to the pool once Execute returns.
type QueryBuilder struct {
	*query.Builder
	sess *session.Session
	pool *session.Pool
}

// Execute runs the built query and releases the builder's borrowed session
// regardless of outcome, shadowing query.Builder's own Execute.
func (qb *QueryBuilder) Execute(ctx context.Context, opts query.ExecuteOptions) (*core.QueryResult, error) {
	defer qb.pool.Release(ctx, qb.sess)
	return qb.Builder.Execute(ctx, opts)
}

// CreateQueryBuilder acquires a session and returns a query.Builder bound to
// it for graphName (spec.md §6: "the builder's terminal execute(opts?)
// returns rows").
func (c *Client) CreateQueryBuilder(ctx context.Context, graphName string) (*QueryBuilder, error) {
	sess, err := c.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	bridge := param.New(sess)
	exec := executor.New(sess)
	return &QueryBuilder{Builder: query.New(graphName, bridge, exec), sess: sess, pool: c.pool}, nil
}

// CreateBatchLoader returns a Loader bound to this Client's pool and sch.
func (c *Client) CreateBatchLoader(sch *schema.Schema) *loader.Loader {
	return loader.New(c.pool, sch)
}

// Transaction acquires a session, runs fn inside a plain relational
// transaction, and releases the session afterward.
func (c *Client) Transaction(ctx context.Context, opts txn.Options, fn func(*txn.Transaction) error) error {
	sess, err := c.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer c.pool.Release(ctx, sess)
	return txn.WithTransaction(ctx, sess, opts, fn)
}

// AgeTransaction behaves like Transaction but first sets the session's
// search_path to graphName.
func (c *Client) AgeTransaction(ctx context.Context, graphName string, opts txn.Options, fn func(*txn.Transaction) error) error {
	sess, err := c.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer c.pool.Release(ctx, sess)
	return txn.WithAgeTransaction(ctx, sess, graphName, opts, fn)
}
