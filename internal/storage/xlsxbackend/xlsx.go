// Package xlsxbackend stores tabular rows in an Excel workbook. Unlike the
// CSV backend this path is allowed to fail independently (the destination
// file may be open in Excel and locked); callers must treat errors here as
// non-fatal and keep the CSV output authoritative.
package xlsxbackend

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/hvacintel/prospector/internal/storage"
	"github.com/xuri/excelize/v2"
)

// ensure xlsxBackend implements storage.Backend
var _ storage.Backend = (*xlsxBackend)(nil)

type xlsxBackend struct {
	mu      sync.Mutex
	path    string
	sheet   string
	columns []string
}

// New creates an XLSX-backed table at filePath on the given sheet. The
// workbook is written on every mutation rather than held open, so a locked
// file surfaces as an Append/Rewrite error instead of poisoning the run.
func New(filePath, sheet string, columns []string) (storage.Backend, error) {
	if sheet == "" {
		sheet = "Sheet1"
	}
	cols := make([]string, len(columns))
	copy(cols, columns)

	b := &xlsxBackend{path: filePath, sheet: sheet, columns: cols}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		if err := b.writeAll(nil); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// open loads the workbook, creating the sheet if needed.
func (b *xlsxBackend) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(b.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	if _, err := f.GetSheetIndex(b.sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to locate sheet: %w", err)
	}
	return f, nil
}

func (b *xlsxBackend) setRow(f *excelize.File, rowIdx int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowIdx)
	if err != nil {
		return fmt.Errorf("failed to compute cell name: %w", err)
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(b.sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to set row: %w", err)
	}
	return nil
}

// writeAll rewrites the workbook from scratch: header plus rows.
func (b *xlsxBackend) writeAll(rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if b.sheet != "Sheet1" {
		if _, err := f.NewSheet(b.sheet); err != nil {
			return fmt.Errorf("failed to create sheet: %w", err)
		}
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("failed to drop default sheet: %w", err)
		}
	}

	if err := b.setRow(f, 1, b.columns); err != nil {
		return err
	}
	for i, row := range rows {
		if err := b.setRow(f, i+2, storage.PadRow(row, len(b.columns))); err != nil {
			return err
		}
	}

	if err := f.SaveAs(b.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func (b *xlsxBackend) Append(ctx context.Context, row []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := b.open()
	if err != nil {
		return err
	}
	defer f.Close()

	existing, err := f.GetRows(b.sheet)
	if err != nil {
		return fmt.Errorf("failed to read rows: %w", err)
	}

	if err := b.setRow(f, len(existing)+1, storage.PadRow(row, len(b.columns))); err != nil {
		return err
	}
	if err := f.SaveAs(b.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func (b *xlsxBackend) Rows(ctx context.Context) ([][]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := b.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	all, err := f.GetRows(b.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(all) <= 1 {
		return [][]string{}, nil
	}

	rows := make([][]string, 0, len(all)-1)
	for _, r := range all[1:] {
		rows = append(rows, storage.PadRow(r, len(b.columns)))
	}
	return rows, nil
}

func (b *xlsxBackend) Rewrite(ctx context.Context, rows [][]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writeAll(rows)
}

func (b *xlsxBackend) Close() error {
	return nil
}
