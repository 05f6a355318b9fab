// Package session owns pooled connections and brings each freshly acquired
// connection to a known state (spec.md §4.2), grounded on
// agensgraph/executor.go's NewConnection DSN assembly.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
	"golang.org/x/sync/semaphore"

	"github.com/standardbeagle/ageSchemaClient-sub007/ageerr"
)

// Pool acquires pooled physical connections and returns bootstrapped
// Sessions. The underlying *sql.DB already pools physical connections;
// Pool adds the bounded-wait acquire semantics and bootstrap/release
// lifecycle spec.md §4.2 requires on top of it.
type Pool struct {
	db  *sql.DB
	cfg Config
	sem *semaphore.Weighted
}

// New opens a pool against cfg. No physical connections are established until
// the first Acquire (database/sql's own lazy-connect behavior), but the DSN is
// validated and pool sizing applied immediately.
func New(cfg Config) (*Pool, error) {
	if cfg.Host == "" {
		return nil, ageerr.New(ageerr.ConnectionError, "host must be specified")
	}
	sslMode := "disable"
	if cfg.SSL {
		sslMode = "require"
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, sslMode)
	if cfg.ApplicationName != "" {
		dsn += fmt.Sprintf(" application_name=%s", cfg.ApplicationName)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, ageerr.Wrap(ageerr.ConnectionError, "open pool", err)
	}
	db.SetMaxOpenConns(cfg.Max)
	db.SetMaxIdleConns(cfg.Min)
	db.SetConnMaxIdleTime(cfg.IdleTimeout)

	return &Pool{db: db, cfg: cfg, sem: semaphore.NewWeighted(int64(cfg.Max))}, nil
}

// NewWithDB wraps an already-open *sql.DB, used by tests to inject a
// go-sqlmock-backed DB without going through a real DSN.
func NewWithDB(db *sql.DB, cfg Config) *Pool {
	if cfg.Max <= 0 {
		cfg.Max = 1
	}
	return &Pool{db: db, cfg: cfg, sem: semaphore.NewWeighted(int64(cfg.Max))}
}

// Acquire blocks until a connection is available or AcquireTimeout elapses
// (ageerr.PoolTimeout), then brings it to the bootstrapped state described in
// spec.md §4.2.
func (p *Pool) Acquire(ctx context.Context) (*Session, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, p.cfg.AcquireTimeout)
	defer cancel()

	if err := p.sem.Acquire(acquireCtx, 1); err != nil {
		return nil, ageerr.Wrap(ageerr.PoolTimeout, "timed out acquiring a session", err)
	}

	conn, err := p.connectWithRetry(ctx)
	if err != nil {
		p.sem.Release(1)
		return nil, err
	}

	sess := &Session{pool: p, conn: conn}
	if err := sess.bootstrap(ctx); err != nil {
		conn.Close()
		p.sem.Release(1)
		return nil, err
	}
	return sess, nil
}

func (p *Pool) connectWithRetry(ctx context.Context) (*sql.Conn, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.cfg.Retry.InitialDelay
	b.MaxInterval = p.cfg.Retry.MaxDelay
	b.Multiplier = p.cfg.Retry.BackoffFactor
	if !p.cfg.Retry.Jitter {
		b.RandomizationFactor = 0
	}
	policy := backoff.WithMaxRetries(b, uint64(maxInt(p.cfg.Retry.MaxAttempts-1, 0)))

	var conn *sql.Conn
	err := backoff.Retry(func() error {
		c, err := p.db.Conn(ctx)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		return nil, ageerr.Wrap(ageerr.ConnectionError, "failed to obtain a connection", err)
	}
	return conn, nil
}

// bootstrap runs the ordered, idempotent setup statements. A failure whose
// SQLSTATE says the object the statement guards with IF NOT EXISTS/OR REPLACE
// already exists (typically another session's bootstrap racing this one) is
// informational per spec.md §6; only a hard failure (e.g. the age extension
// is genuinely unavailable) is surfaced as a ConnectionError.
func (s *Session) bootstrap(ctx context.Context) error {
	for _, stmt := range bootstrapStatements(s.pool.cfg.SearchPath) {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			if isIdempotentBootstrapFailure(err) {
				continue
			}
			return ageerr.Wrap(ageerr.ConnectionError, "session bootstrap failed", err)
		}
	}
	return nil
}

// Release truncates the scratch table (so a poisoned session never reaches
// the next borrower, spec.md §5) and returns the connection to the pool.
// Failure is non-fatal for the caller; it is logged and returned so the
// caller can surface it as a warning per spec.md §7.
func (p *Pool) Release(ctx context.Context, s *Session) error {
	defer p.sem.Release(1)
	defer s.conn.Close()

	if _, err := s.conn.ExecContext(ctx, sqlTruncateScratchTable); err != nil {
		log.Printf("ageschema: warning: failed to truncate age_params on release: %v", err)
		return ageerr.Wrap(ageerr.ConnectionError, "release: truncate age_params failed", err)
	}
	return nil
}

// Ping performs a cheap liveness probe, adopted from the original
// implementation's pre-acquire connection health check (SPEC_FULL.md §9.1).
func (p *Pool) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.db.PingContext(pingCtx); err != nil {
		return ageerr.Wrap(ageerr.ConnectionError, "ping failed", err)
	}
	return nil
}

// Shutdown closes the pool. No further Acquire calls will succeed.
func (p *Pool) Shutdown() error {
	return p.db.Close()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
