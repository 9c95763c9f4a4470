// Package csvbackend stores tabular rows in a CSV file. It is the canonical
// output and checkpoint medium: writes here must succeed for a run to make
// progress, and each Append is flushed to disk before returning.
package csvbackend

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hvacintel/prospector/internal/storage"
)

// ensure csvBackend implements storage.Backend
var _ storage.Backend = (*csvBackend)(nil)

type csvBackend struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	columns []string
}

// New opens (or creates) a CSV table at filePath with the given column
// schema. A header row is written if the file is empty.
func New(filePath string, columns []string) (storage.Backend, error) {
	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat csv file: %w", err)
	}

	if info.Size() == 0 {
		w := csv.NewWriter(f)
		if err := w.Write(columns); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to flush header: %w", err)
		}
	}

	cols := make([]string, len(columns))
	copy(cols, columns)

	return &csvBackend{path: filePath, file: f, columns: cols}, nil
}

func (b *csvBackend) Append(ctx context.Context, row []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	w := csv.NewWriter(b.file)
	if err := w.Write(storage.PadRow(row, len(b.columns))); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush row: %w", err)
	}
	return b.file.Sync()
}

func (b *csvBackend) Rows(ctx context.Context) ([][]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek: %w", err)
	}
	defer func() {
		_, _ = b.file.Seek(0, io.SeekEnd)
	}()

	r := csv.NewReader(b.file)
	r.FieldsPerRecord = -1 // tolerate short rows from interrupted runs

	// Skip header
	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return [][]string{}, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		rows = append(rows, storage.PadRow(record, len(b.columns)))
	}
	return rows, nil
}

func (b *csvBackend) Rewrite(ctx context.Context, rows [][]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.file.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate: %w", err)
	}
	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	w := csv.NewWriter(b.file)
	if err := w.Write(b.columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(storage.PadRow(row, len(b.columns))); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}
	return b.file.Sync()
}

func (b *csvBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.Close()
}
