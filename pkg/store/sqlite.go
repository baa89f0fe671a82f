package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hazyhaar/provider-directory/pkg/provider"
	_ "modernc.org/sqlite"
)

// SQLite is the default catalog: a single file next to the source ledger.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the catalog database at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Replace implements Sink. The whole write runs in one transaction so
// readers never see a half-written catalog.
func (s *SQLite) Replace(ctx context.Context, table string, t *provider.Table) error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("replace %s: table has no columns", table)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quote(table)); err != nil {
		return fmt.Errorf("drop %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(table, t.Columns)); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}

	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = quote(c)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(t.Columns)), ",")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(table), strings.Join(cols, ", "), placeholders))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range t.Records {
		if _, err := stmt.ExecContext(ctx, args(&t.Records[i], t.Columns)...); err != nil {
			return fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}

	for _, q := range indexSQL(table, t) {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return tx.Commit()
}

// Load reads table back in column order.
func (s *SQLite) Load(ctx context.Context, table string) (*provider.Table, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quote(table))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	var data [][]*string
	for rows.Next() {
		vals := make([]sql.NullString, len(columns))
		ptrs := make([]any, len(columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		row := make([]*string, len(columns))
		for i, v := range vals {
			if v.Valid {
				s := v.String
				row[i] = &s
			}
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	return provider.TableFrom(columns, data), nil
}

// Indexes lists the index names defined on table.
func (s *SQLite) Indexes(ctx context.Context, table string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = ? ORDER BY name`, table)
	if err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
