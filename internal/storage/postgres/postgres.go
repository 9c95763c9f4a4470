// Package postgres stores tabular rows in Postgres via pgx, for deployments
// where several batch runs feed one shared database.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/hvacintel/prospector/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ensure postgresBackend implements storage.Backend
var _ storage.Backend = (*postgresBackend)(nil)

type postgresBackend struct {
	pool    *pgxpool.Pool
	table   string
	columns []string
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// New connects to Postgres and ensures the table exists with the given
// column schema plus a BIGSERIAL seq column for insertion order.
func New(ctx context.Context, dsn, table string, columns []string) (storage.Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	defs := make([]string, 0, len(columns))
	for _, col := range columns {
		defs = append(defs, quoteIdent(col)+" TEXT NOT NULL DEFAULT ''")
	}
	ddl := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (seq BIGSERIAL PRIMARY KEY, %s)",
		quoteIdent(table), strings.Join(defs, ", "),
	)
	if _, err := pool.Exec(ctx, ddl); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	cols := make([]string, len(columns))
	copy(cols, columns)

	return &postgresBackend{pool: pool, table: table, columns: cols}, nil
}

func (b *postgresBackend) insertSQL() string {
	quoted := make([]string, 0, len(b.columns))
	marks := make([]string, 0, len(b.columns))
	for i, col := range b.columns {
		quoted = append(quoted, quoteIdent(col))
		marks = append(marks, fmt.Sprintf("$%d", i+1))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(b.table), strings.Join(quoted, ", "), strings.Join(marks, ", "))
}

func rowArgs(row []string, n int) []any {
	row = storage.PadRow(row, n)
	args := make([]any, n)
	for i, v := range row {
		args[i] = v
	}
	return args
}

func (b *postgresBackend) Append(ctx context.Context, row []string) error {
	if _, err := b.pool.Exec(ctx, b.insertSQL(), rowArgs(row, len(b.columns))...); err != nil {
		return fmt.Errorf("failed to insert row: %w", err)
	}
	return nil
}

func (b *postgresBackend) Rows(ctx context.Context) ([][]string, error) {
	quoted := make([]string, 0, len(b.columns))
	for _, col := range b.columns {
		quoted = append(quoted, quoteIdent(col))
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY seq",
		strings.Join(quoted, ", "), quoteIdent(b.table))

	rows, err := b.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		vals := make([]string, len(b.columns))
		ptrs := make([]any, len(b.columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return out, nil
}

func (b *postgresBackend) Rewrite(ctx context.Context, newRows [][]string) error {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM "+quoteIdent(b.table)); err != nil {
		return fmt.Errorf("failed to clear table: %w", err)
	}

	insert := b.insertSQL()
	for _, row := range newRows {
		if _, err := tx.Exec(ctx, insert, rowArgs(row, len(b.columns))...); err != nil {
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
