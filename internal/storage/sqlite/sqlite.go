// Package sqlite stores tabular rows in a local SQLite database. Handy when
// a run's output should be queryable without a server.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hvacintel/prospector/internal/storage"
	_ "modernc.org/sqlite"
)

// ensure sqliteBackend implements storage.Backend
var _ storage.Backend = (*sqliteBackend)(nil)

type sqliteBackend struct {
	db      *sql.DB
	table   string
	columns []string
}

// quoteIdent double-quotes an SQL identifier, escaping embedded quotes.
// Column names like "Role (Contact Person)" contain spaces and punctuation.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// New opens (or creates) a SQLite-backed table with the given columns. The
// seq column preserves insertion order across reads.
func New(dsn, table string, columns []string) (storage.Backend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	defs := make([]string, 0, len(columns))
	for _, col := range columns {
		defs = append(defs, quoteIdent(col)+" TEXT NOT NULL DEFAULT ''")
	}
	ddl := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (seq INTEGER PRIMARY KEY AUTOINCREMENT, %s)",
		quoteIdent(table), strings.Join(defs, ", "),
	)
	if _, err := db.Exec(ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	cols := make([]string, len(columns))
	copy(cols, columns)

	return &sqliteBackend{db: db, table: table, columns: cols}, nil
}

func (b *sqliteBackend) insertSQL() string {
	quoted := make([]string, 0, len(b.columns))
	marks := make([]string, 0, len(b.columns))
	for _, col := range b.columns {
		quoted = append(quoted, quoteIdent(col))
		marks = append(marks, "?")
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

func (b *sqliteBackend) Append(ctx context.Context, row []string) error {
	if _, err := b.db.ExecContext(ctx, b.insertSQL(), rowArgs(row, len(b.columns))...); err != nil {
		return fmt.Errorf("failed to insert row: %w", err)
	}
	return nil
}

func (b *sqliteBackend) Rows(ctx context.Context) ([][]string, error) {
	quoted := make([]string, 0, len(b.columns))
	for _, col := range b.columns {
		quoted = append(quoted, quoteIdent(col))
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY seq",
		strings.Join(quoted, ", "), quoteIdent(b.table))

	rows, err := b.db.QueryContext(ctx, query)
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

func (b *sqliteBackend) Rewrite(ctx context.Context, newRows [][]string) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+quoteIdent(b.table)); err != nil {
		return fmt.Errorf("failed to clear table: %w", err)
	}

	insert := b.insertSQL()
	for _, row := range newRows {
		if _, err := tx.ExecContext(ctx, insert, rowArgs(row, len(b.columns))...); err != nil {
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}
	return tx.Commit()
}

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}
