// Package dbpool manages the read-only PostgreSQL pool used by the
// knowledge-graph provider.
package dbpool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrInvalidTenant is returned when a tenant id is not a UUID.
	ErrInvalidTenant = errors.New("invalid tenant ID format")

	// ErrSchemaMissing is returned when the knowledge-graph tables are absent.
	ErrSchemaMissing = errors.New("knowledge-graph schema not found")
)

// requiredTables are read by the knowledge-graph provider.
var requiredTables = []string{"kg_nodes", "kg_edges"}

// Querier is the subset of pgx.Tx available inside a read transaction.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool wraps a pgxpool.Pool. Every query runs inside a read-only
// transaction scoped to one tenant.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to databaseURL and pings it. The pool is small since a
// crawl issues one query at a time.
func NewPool(ctx context.Context, databaseURL string) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	cfg.ConnConfig.RuntimeParams["statement_timeout"] = "15000"
	cfg.ConnConfig.RuntimeParams["application_name"] = "degrees"

	cfg.MaxConns = 4
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &Pool{pool: pool}, nil
}

// ReadTx runs fn in a read-only transaction with app.tenant_id set for
// row level security. The transaction is always rolled back.
func (p *Pool) ReadTx(ctx context.Context, tenantID string, fn func(Querier) error) error {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return fmt.Errorf("beginning read transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // read-only, nothing to commit.

	if err := SetTenant(ctx, tx, tenantID); err != nil {
		return err
	}

	return fn(tx)
}

// SetTenant validates tenantID and binds it to the current transaction.
func SetTenant(ctx context.Context, q Querier, tenantID string) error {
	if _, err := uuid.Parse(tenantID); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTenant, err)
	}

	var applied string
	if err := q.QueryRow(ctx, "SELECT set_config('app.tenant_id', $1, true)", tenantID).Scan(&applied); err != nil {
		return fmt.Errorf("setting tenant context: %w", err)
	}

	return nil
}

// CheckSchema returns ErrSchemaMissing unless every table the provider
// reads exists.
func CheckSchema(ctx context.Context, q Querier) error {
	for _, table := range requiredTables {
		var found bool
		if err := q.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", table).Scan(&found); err != nil {
			return fmt.Errorf("checking table %s: %w", table, err)
		}

		if !found {
			return fmt.Errorf("%w: table %s does not exist", ErrSchemaMissing, table)
		}
	}

	return nil
}

// Verify checks the schema through the pool.
func (p *Pool) Verify(ctx context.Context) error {
	return CheckSchema(ctx, p.pool)
}

// Ping verifies the pool can reach the database.
func (p *Pool) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the connection pool.
func (p *Pool) Close() {
	p.pool.Close()
}
