package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/persistorai/degrees/internal/dbpool"
	"github.com/persistorai/degrees/internal/models"
)

// neighborLimit caps the neighbors read for one node.
const neighborLimit = 1000

// Reader runs tenant scoped read transactions. *dbpool.Pool implements it.
type Reader interface {
	ReadTx(ctx context.Context, tenantID string, fn func(dbpool.Querier) error) error
}

// PostgresProvider reads associations from a persistor knowledge graph.
// References are node ids and display names are node labels. Edges are
// followed in both directions.
type PostgresProvider struct {
	db     Reader
	tenant string
}

// NewPostgresProvider creates a PostgresProvider for tenantID.
func NewPostgresProvider(db Reader, tenantID string) *PostgresProvider {
	return &PostgresProvider{db: db, tenant: tenantID}
}

const nameSQL = `SELECT label FROM kg_nodes
	WHERE id = $1 AND tenant_id = current_setting('app.tenant_id')::uuid`

// Node existence is checked in the same transaction so that an unknown id
// reads as unavailable rather than as an isolated node.
const neighborsSQL = `SELECT n.id, n.label FROM (
		(SELECT target AS id FROM kg_edges
		WHERE source = $1 AND tenant_id = current_setting('app.tenant_id')::uuid)
		UNION
		(SELECT source AS id FROM kg_edges
		WHERE target = $1 AND tenant_id = current_setting('app.tenant_id')::uuid)
	) e
	JOIN kg_nodes n ON n.id = e.id AND n.tenant_id = current_setting('app.tenant_id')::uuid
	ORDER BY n.id LIMIT $2`

// ResolveName returns the label of node ref.
func (p *PostgresProvider) ResolveName(ctx context.Context, ref string) (string, error) {
	var label string

	err := p.db.ReadTx(ctx, p.tenant, func(q dbpool.Querier) error {
		return q.QueryRow(ctx, nameSQL, ref).Scan(&label)
	})

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return "", unavailable("name", ref, errors.New("provider/postgres: node not found"))
	case err != nil:
		return "", p.fail("name", ref, err)
	case label == "":
		return "", unavailable("name", ref, errors.New("provider/postgres: empty label"))
	}

	return label, nil
}

// Neighbors returns the nodes sharing an edge with ref, ordered by id.
func (p *PostgresProvider) Neighbors(ctx context.Context, ref string) ([]models.Association, error) {
	var out []models.Association

	err := p.db.ReadTx(ctx, p.tenant, func(q dbpool.Querier) error {
		var exists string
		if err := q.QueryRow(ctx, nameSQL, ref).Scan(&exists); err != nil {
			return err
		}

		rows, err := q.Query(ctx, neighborsSQL, ref, neighborLimit)
		if err != nil {
			return fmt.Errorf("querying neighbors: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var a models.Association
			if err := rows.Scan(&a.Ref, &a.Name); err != nil {
				return fmt.Errorf("scanning neighbor: %w", err)
			}

			out = append(out, a)
		}

		return rows.Err()
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, unavailable("neighbors", ref, errors.New("provider/postgres: node not found"))
	}

	if err != nil {
		return nil, p.fail("neighbors", ref, err)
	}

	return out, nil
}

// fail maps database errors. A bad tenant id is a configuration fault and
// stops the crawl. Other failures make the reference unavailable.
func (p *PostgresProvider) fail(op, ref string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	err = fmt.Errorf("provider/postgres: %w", err)

	if errors.Is(err, dbpool.ErrInvalidTenant) {
		return &models.ResolutionError{Ref: ref, Op: op, Err: err}
	}

	return unavailable(op, ref, err)
}
