// Package storage defines the tabular persistence interface shared by the
// discovery and extraction pipelines. Rows are positional string slices
// matching a fixed column schema; backends persist them incrementally
// (Append) and support a final full rewrite for sorted output.
package storage

import "context"

// Backend persists rows under a fixed column schema. Append must be durable
// immediately, since it doubles as the pipelines' checkpoint mechanism.
type Backend interface {
	// Append writes a single row at the end of the table.
	Append(ctx context.Context, row []string) error
	// Rows returns every stored row in insertion order, excluding the header.
	Rows(ctx context.Context) ([][]string, error)
	// Rewrite replaces the whole table with the given rows.
	Rewrite(ctx context.Context, rows [][]string) error
	Close() error
}

// PadRow returns row extended or truncated to exactly n columns. Backends
// use it to tolerate short rows read back from disk.
func PadRow(row []string, n int) []string {
	if len(row) == n {
		return row
	}
	out := make([]string, n)
	copy(out, row)
	return out
}
