package provider_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/persistorai/degrees/internal/dbpool"
	"github.com/persistorai/degrees/internal/models"
)

// countingProvider returns fixed answers and counts calls per operation.
type countingProvider struct {
	mu        sync.Mutex
	names     map[string]string
	neighbors map[string][]models.Association
	fail      map[string]error
	calls     map[string]int
}

func newCountingProvider() *countingProvider {
	return &countingProvider{
		names:     map[string]string{"a": "Alice", "b": "Bob"},
		neighbors: map[string][]models.Association{"a": {{Name: "Bob", Ref: "b"}}},
		fail:      make(map[string]error),
		calls:     make(map[string]int),
	}
}

func (p *countingProvider) count(key string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.calls[key]
}

func (p *countingProvider) ResolveName(_ context.Context, ref string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls["name:"+ref]++

	if err := p.fail[ref]; err != nil {
		return "", err
	}

	return p.names[ref], nil
}

func (p *countingProvider) Neighbors(_ context.Context, ref string) ([]models.Association, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls["neighbors:"+ref]++

	if err := p.fail[ref]; err != nil {
		return nil, err
	}

	return append([]models.Association(nil), p.neighbors[ref]...), nil
}

// fakeDB stands in for dbpool.Pool over an in-memory node and edge set.
type fakeDB struct {
	labels  map[string]string
	edges   [][2]string
	err     error
	tenants []string
}

func (d *fakeDB) ReadTx(ctx context.Context, tenantID string, fn func(dbpool.Querier) error) error {
	d.tenants = append(d.tenants, tenantID)

	if d.err != nil {
		return d.err
	}

	q := &fakeQuerier{db: d}
	if err := dbpool.SetTenant(ctx, q, tenantID); err != nil {
		return err
	}

	return fn(q)
}

type fakeQuerier struct {
	db *fakeDB
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	if len(args) == 1 && sql == "SELECT set_config('app.tenant_id', $1, true)" {
		return fakeRow{values: []string{fmt.Sprint(args[0])}}
	}

	ref := fmt.Sprint(args[0])

	label, ok := q.db.labels[ref]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}

	return fakeRow{values: []string{label}}
}

func (q *fakeQuerier) Query(_ context.Context, _ string, args ...any) (pgx.Rows, error) {
	ref := fmt.Sprint(args[0])

	seen := make(map[string]bool)

	var rows [][]string

	for _, e := range q.db.edges {
		var other string

		switch ref {
		case e[0]:
			other = e[1]
		case e[1]:
			other = e[0]
		default:
			continue
		}

		label, ok := q.db.labels[other]
		if !ok || seen[other] {
			continue
		}

		seen[other] = true
		rows = append(rows, []string{other, label})
	}

	return &fakeRows{rows: rows, pos: -1}, nil
}

type fakeRow struct {
	values []string
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}

	return scanStrings(r.values, dest)
}

type fakeRows struct {
	rows [][]string
	pos  int
}

func (r *fakeRows) Close() {}
func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte { return nil }
func (r *fakeRows) Conn() *pgx.Conn { return nil }

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	return scanStrings(r.rows[r.pos], dest)
}

func (r *fakeRows) Values() ([]any, error) {
	out := make([]any, len(r.rows[r.pos]))
	for i, v := range r.rows[r.pos] {
		out[i] = v
	}

	return out, nil
}

func scanStrings(values []string, dest []any) error {
	if len(values) != len(dest) {
		return errors.New("column count mismatch")
	}

	for i, d := range dest {
		p, ok := d.(*string)
		if !ok {
			return fmt.Errorf("unsupported scan target %T", d)
		}

		*p = values[i]
	}

	return nil
}

// gatedProvider blocks Neighbors until release is closed. A lookup whose ctx
// ends first fails with the ctx error.
type gatedProvider struct {
	*countingProvider
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedProvider() *gatedProvider {
	return &gatedProvider{
		countingProvider: newCountingProvider(),
		started:          make(chan struct{}),
		release:          make(chan struct{}),
	}
}

func (p *gatedProvider) Neighbors(ctx context.Context, ref string) ([]models.Association, error) {
	p.once.Do(func() { close(p.started) })

	select {
	case <-p.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return p.countingProvider.Neighbors(ctx, ref)
}
