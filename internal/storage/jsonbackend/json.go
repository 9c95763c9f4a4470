// Package jsonbackend stores tabular rows as NDJSON objects keyed by column
// name. Useful for feeding downstream tooling that prefers JSON over CSV.
package jsonbackend

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hvacintel/prospector/internal/storage"
)

// ensure jsonBackend implements storage.Backend
var _ storage.Backend = (*jsonBackend)(nil)

type jsonBackend struct {
	mu      sync.Mutex
	file    *os.File
	columns []string
}

// New creates an NDJSON-backed table at filePath with the given columns.
func New(filePath string, columns []string) (storage.Backend, error) {
	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open ndjson file: %w", err)
	}

	cols := make([]string, len(columns))
	copy(cols, columns)

	return &jsonBackend{file: f, columns: cols}, nil
}

func (b *jsonBackend) toObject(row []string) map[string]string {
	row = storage.PadRow(row, len(b.columns))
	obj := make(map[string]string, len(b.columns))
	for i, col := range b.columns {
		obj[col] = row[i]
	}
	return obj
}

func (b *jsonBackend) fromObject(obj map[string]string) []string {
	row := make([]string, len(b.columns))
	for i, col := range b.columns {
		row[i] = obj[col]
	}
	return row
}

func (b *jsonBackend) Append(ctx context.Context, row []string) error {
	data, err := json.Marshal(b.toObject(row))
	if err != nil {
		return fmt.Errorf("failed to marshal row: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	return b.file.Sync()
}

func (b *jsonBackend) Rows(ctx context.Context) ([][]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek: %w", err)
	}
	defer func() {
		_, _ = b.file.Seek(0, io.SeekEnd)
	}()

	var rows [][]string
	scanner := bufio.NewScanner(b.file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var obj map[string]string
		if err := json.Unmarshal(line, &obj); err != nil {
			return nil, fmt.Errorf("failed to unmarshal row: %w", err)
		}
		rows = append(rows, b.fromObject(obj))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan rows: %w", err)
	}
	return rows, nil
}

func (b *jsonBackend) Rewrite(ctx context.Context, rows [][]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.file.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate: %w", err)
	}
	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	w := bufio.NewWriter(b.file)
	for _, row := range rows {
		data, err := json.Marshal(b.toObject(row))
		if err != nil {
			return fmt.Errorf("failed to marshal row: %w", err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}
	return b.file.Sync()
}

func (b *jsonBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.Close()
}
