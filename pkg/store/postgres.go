package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hazyhaar/provider-directory/pkg/provider"
)

// Postgres is the optional second catalog. Rows are streamed with COPY.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to the database at url.
func OpenPostgres(ctx context.Context, url string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	cfg.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close closes the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// Replace implements Sink.
func (p *Postgres) Replace(ctx context.Context, table string, t *provider.Table) error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("replace %s: table has no columns", table)
	}
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+quote(table)); err != nil {
		return fmt.Errorf("drop %s: %w", table, err)
	}
	if _, err := tx.Exec(ctx, createTableSQL(table, t.Columns)); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, t.Columns,
		pgx.CopyFromSlice(len(t.Records), func(i int) ([]any, error) {
			return args(&t.Records[i], t.Columns), nil
		}))
	if err != nil {
		return fmt.Errorf("copy into %s: %w", table, err)
	}
	if int(n) != len(t.Records) {
		return fmt.Errorf("copy into %s: wrote %d of %d rows", table, n, len(t.Records))
	}

	for _, q := range indexSQL(table, t) {
		if _, err := tx.Exec(ctx, q); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// Count returns the number of rows in table.
func (p *Postgres) Count(ctx context.Context, table string) (int, error) {
	var n int
	if err := p.pool.QueryRow(ctx, "SELECT count(*) FROM "+quote(table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
